package fdp

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Adda-Baaj/fdp-http-api/pkg/httpclient"
)

const (
	FormatCSV  = "CSV"
	FormatJSON = "JSON"
)

// QueryDataRequest queries the data table of a certified table definition.
type QueryDataRequest struct {
	OwningService   string         `json:"owning_service"`
	QueryType       *string        `json:"query_type"`
	QueryStatement  string         `json:"query_statement"`
	QueryParameters map[string]any `json:"query_parameters"`
	ResponseFormat  string         `json:"response_format"`
}

// QueryData returns the query result as CSV text or decoded JSON.
func (c *Client) QueryData(ctx context.Context, req QueryDataRequest) (int, Body, error) {
	return c.callBody(ctx, http.MethodPost, sqlPath+"/queryData", nil, req)
}

// UpdateDataRequest updates a data table either with SQL statements or with
// CSV content.
type UpdateDataRequest struct {
	OwningService      string         `json:"owning_service"`
	SQLStatements      []string       `json:"sql_statements"`
	SQLParameters      map[string]any `json:"sql_parameters"`
	UploadTableName    string         `json:"upload_table_name"`
	UploadedCSVContent *string        `json:"uploaded_csv_content"`
	IsAppend           *bool          `json:"is_append"`
}

// UpdateData applies req to the owning service's data tables.
func (c *Client) UpdateData(ctx context.Context, req UpdateDataRequest) (int, string, error) {
	return c.callText(ctx, http.MethodPost, sqlPath+"/updateData", nil, req)
}

// UploadCsv streams the file at csvPath into uploadTableName. The file is
// held open only for the duration of the call.
func (c *Client) UploadCsv(ctx context.Context, owningService, uploadTableName, csvPath string, isAppend *bool) (int, string, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, "", fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	req := c.newRequest(http.MethodPost, sqlPath+"/uploadCsv", Params{
		"owning_service":    owningService,
		"upload_table_name": uploadTableName,
		"is_append":         optional(isAppend),
	}, nil)
	req.File = &httpclient.File{Field: "file", Name: filepath.Base(csvPath), Reader: f}

	resp, err := c.send(ctx, req)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode(), resp.String(), nil
}
