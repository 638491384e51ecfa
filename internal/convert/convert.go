package convert

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/pfncards/internal/card"
	"github.com/hpungsan/pfncards/internal/errors"
)

// MaxLineBytes is the longest source line the scanner accepts.
const MaxLineBytes = 1 << 20

const utf8BOM = "\ufeff"

// LineIssue describes a source line that was dropped.
type LineIssue struct {
	Line    int             `json:"line"`
	Content string          `json:"content"`
	Status  card.LineStatus `json:"-"`
	Reason  string          `json:"reason"`
}

// Message renders the issue the way the converter reports it on the console.
func (i LineIssue) Message() string {
	if i.Status == card.LineEmptyField {
		return fmt.Sprintf("Line %d has empty word: '%s'", i.Line, i.Content)
	}
	return fmt.Sprintf("Line %d doesn't have expected format: '%s'", i.Line, i.Content)
}

// ParseResult holds the cards and issues found in a source.
type ParseResult struct {
	Cards  []card.Card
	Issues []LineIssue
}

// Parse reads r line by line and turns each non-blank line into a card.
// Malformed lines are recorded as issues and passed to onIssue (if non-nil)
// as they are encountered; they never stop the scan. source names r in errors.
func Parse(ctx context.Context, r io.Reader, source string, onIssue func(LineIssue)) (*ParseResult, error) {
	result := &ParseResult{Cards: make([]card.Card, 0)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("parse")
		default:
		}

		lineNum++
		raw := scanner.Text()
		if lineNum == 1 {
			raw = strings.TrimPrefix(raw, utf8BOM)
		}
		if !utf8.ValidString(raw) {
			return nil, errors.NewEncoding(source, lineNum)
		}

		c, status := card.ParseLine(raw)
		switch status {
		case card.LineOK:
			result.Cards = append(result.Cards, c)
		case card.LineBlank:
			// skipped without a diagnostic
		default:
			issue := LineIssue{
				Line:    lineNum,
				Content: strings.TrimSpace(raw),
				Status:  status,
				Reason:  status.String(),
			}
			result.Issues = append(result.Issues, issue)
			if onIssue != nil {
				onIssue(issue)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		if stderrors.Is(err, bufio.ErrTooLong) {
			return nil, errors.NewInvalidRequest(
				fmt.Sprintf("%s: line %d exceeds %d bytes", source, lineNum+1, MaxLineBytes))
		}
		return nil, errors.NewInternal(fmt.Errorf("read %s: %w", source, err))
	}

	return result, nil
}

// ConvertInput contains parameters for the Convert operation.
type ConvertInput struct {
	Source      string // required, line-oriented text file
	Destination string // required, .json file
	OnIssue     func(LineIssue)
}

// ConvertOutput contains the result of the Convert operation.
type ConvertOutput struct {
	Source      string      `json:"source"`
	Destination string      `json:"destination"`
	Count       int         `json:"count"`
	Cards       []card.Card `json:"-"`
	Issues      []LineIssue `json:"issues"`
}

// Convert parses the source file and writes its cards to the destination as
// a JSON array. The destination is replaced atomically; it is never touched
// when the source is missing or unreadable.
func Convert(ctx context.Context, log *slog.Logger, input ConvertInput) (*ConvertOutput, error) {
	log = orDiscard(log)

	if err := ValidateSource(input.Source); err != nil {
		return nil, err
	}
	if err := ValidateDestination(input.Destination); err != nil {
		return nil, err
	}

	result, err := parseFile(ctx, input.Source, input.OnIssue)
	if err != nil {
		return nil, err
	}
	log.Debug("source parsed",
		slog.String("source", input.Source),
		slog.Int("cards", len(result.Cards)),
		slog.Int("issues", len(result.Issues)))

	if err := writeCardsAtomic(input.Destination, result.Cards); err != nil {
		return nil, err
	}
	log.Debug("destination written", slog.String("destination", input.Destination))

	return &ConvertOutput{
		Source:      input.Source,
		Destination: input.Destination,
		Count:       len(result.Cards),
		Cards:       result.Cards,
		Issues:      result.Issues,
	}, nil
}

// CheckInput contains parameters for the Check operation.
type CheckInput struct {
	Source  string // required
	OnIssue func(LineIssue)
}

// CheckOutput contains the result of the Check operation.
type CheckOutput struct {
	Source string      `json:"source"`
	Count  int         `json:"count"`
	Issues []LineIssue `json:"issues"`
}

// Check parses the source file without writing anything.
func Check(ctx context.Context, log *slog.Logger, input CheckInput) (*CheckOutput, error) {
	log = orDiscard(log)

	if err := ValidateSource(input.Source); err != nil {
		return nil, err
	}

	result, err := parseFile(ctx, input.Source, input.OnIssue)
	if err != nil {
		return nil, err
	}
	log.Debug("source checked",
		slog.String("source", input.Source),
		slog.Int("cards", len(result.Cards)),
		slog.Int("issues", len(result.Issues)))

	issues := result.Issues
	if issues == nil {
		issues = []LineIssue{}
	}
	return &CheckOutput{
		Source: input.Source,
		Count:  len(result.Cards),
		Issues: issues,
	}, nil
}

// IssueLines returns the line numbers of the given issues.
func IssueLines(issues []LineIssue) []int {
	lines := make([]int, len(issues))
	for i, issue := range issues {
		lines[i] = issue.Line
	}
	return lines
}

func parseFile(ctx context.Context, path string, onIssue func(LineIssue)) (*ParseResult, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open input file: %w", err))
	}
	defer file.Close()

	return Parse(ctx, file, path, onIssue)
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}
