package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"upreport/internal/core"
	ports "upreport/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const maxTitleLength = 100

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Optional prefix for every tab, e.g. "Up " gives "Up tag_summary".
	titlePrefix string
}

// Ensure interface conformance
var _ ports.ReportWriter = (*Client)(nil)

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, titlePrefix string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID, titlePrefix: titlePrefix}
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_PREFIX is prepended to every tab title.
func NewFromEnv(ctx context.Context) (*Client, error) {
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	// Also check the standard Google Cloud environment variable
	if serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return NewWithServiceAccount(ctx,
		os.Getenv("GOOGLE_SPREADSHEET_ID"),
		os.Getenv("GOOGLE_SHEET_PREFIX"),
		os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		serviceAccountFile)
}

// NewWithServiceAccount creates a Sheets client authenticated with a service
// account given inline or as a file. Inline credentials win.
func NewWithServiceAccount(ctx context.Context, spreadsheetID, titlePrefix, credentialsJSON, credentialsFile string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx, strings.TrimSpace(credentialsJSON), strings.TrimSpace(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, spreadsheetID, titlePrefix), nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, serviceAccountJSON, serviceAccountFile string) (*gsheet.Service, error) {
	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading service account credentials", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteReport writes every sheet of the workbook to its own tab, creating
// missing tabs and replacing the contents of existing ones. It returns the
// spreadsheet URL.
func (c *Client) WriteReport(ctx context.Context, wb core.Workbook) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	names := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		names[i] = s.Name
	}
	titles := c.tabTitles(names)

	if err := c.ensureTabs(ctx, titles); err != nil {
		return "", err
	}

	ranges := make([]string, len(titles))
	data := make([]*gsheet.ValueRange, len(titles))
	for i, s := range wb.Sheets {
		ranges[i] = quoteTitle(titles[i])
		data[i] = &gsheet.ValueRange{
			Range:  ranges[i] + "!A1",
			Values: toValues(s),
		}
	}

	if len(ranges) > 0 {
		_, err := c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID,
			&gsheet.BatchClearValuesRequest{Ranges: ranges}).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("clear report tabs: %w", err)
		}

		_, err = c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data:             data,
		}).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("write report tabs: %w", err)
		}
	}

	ref := "https://docs.google.com/spreadsheets/d/" + c.spreadsheetID
	slog.InfoContext(ctx, "Report written", "backend", "sheets", "spreadsheet_id", c.spreadsheetID, "sheets", len(titles))
	return ref, nil
}

// ensureTabs adds the tabs that do not exist yet in one batch request.
func (c *Client) ensureTabs(ctx context.Context, titles []string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	existing := make(map[string]bool, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			existing[s.Properties.Title] = true
		}
	}

	var reqs []*gsheet.Request
	for _, t := range titles {
		if existing[t] {
			continue
		}
		existing[t] = true
		reqs = append(reqs, &gsheet.Request{AddSheet: &gsheet.AddSheetRequest{
			Properties: &gsheet.SheetProperties{Title: t},
		}})
	}
	if len(reqs) == 0 {
		return nil
	}
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID,
		&gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add %d tabs: %w", len(reqs), err)
	}
	return nil
}

func (c *Client) tabTitle(name string) string {
	t := strings.TrimSpace(c.titlePrefix + name)
	// Tab titles cannot contain these characters in A1 ranges.
	t = strings.NewReplacer("[", "(", "]", ")", ":", "-", "*", "-", "?", "", "/", "-", `\`, "-").Replace(t)
	if r := []rune(t); len(r) > maxTitleLength {
		t = string(r[:maxTitleLength])
	}
	return t
}

// tabTitles maps sheet names to distinct tab titles. Names that collide
// after sanitizing get a numeric suffix. Tab titles compare without case.
func (c *Client) tabTitles(names []string) []string {
	titles := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, name := range names {
		t := c.tabTitle(name)
		for n := 2; used[strings.ToLower(t)]; n++ {
			t = withSuffix(c.tabTitle(name), fmt.Sprintf(" (%d)", n))
		}
		used[strings.ToLower(t)] = true
		titles[i] = t
	}
	return titles
}

func withSuffix(title, suffix string) string {
	r := []rune(title)
	if limit := maxTitleLength - len([]rune(suffix)); len(r) > limit {
		r = r[:limit]
	}
	return string(r) + suffix
}

// quoteTitle quotes a tab title for use in an A1 range.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func toValues(s *core.Sheet) [][]any {
	out := make([][]any, 0, len(s.Rows)+1)
	if len(s.Header) > 0 {
		out = append(out, toRow(s.Header))
	}
	for _, row := range s.Rows {
		out = append(out, toRow(row))
	}
	return out
}

func toRow(cells []string) []any {
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
