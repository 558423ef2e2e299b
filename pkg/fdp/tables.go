package fdp

import (
	"context"
	"net/http"
)

const (
	QueryTypeMySQL  = "MYSQL"
	QueryTypePresto = "PRESTO"
)

// QueryStatement is one of the statements attached to a certified table.
type QueryStatement struct {
	QueryType    string `json:"query_type"`
	DataQuery    string `json:"data_query"`
	SQLDataTable string `json:"sql_data_table,omitempty"`
}

// TableDefinition is the body of createTableDefinition. A nil statement is
// sent as JSON null.
type TableDefinition struct {
	OwningService             string          `json:"owning_service"`
	TableName                 string          `json:"table_name"`
	TableDescription          string          `json:"table_description"`
	Owners                    []string        `json:"owners"`
	CreateTableStatement      string          `json:"create_table_statement"`
	ForVisualization          bool            `json:"for_visualization"`
	ForSharing                bool            `json:"for_sharing"`
	FullQueryStatement        *QueryStatement `json:"full_query_statement"`
	IncrementalQueryStatement *QueryStatement `json:"incremental_query_statement"`
	MaintenanceQueryStatement string          `json:"maintenance_query_statement"`
}

// NewTableDefinition fills the statement defaults the service expects: empty
// MYSQL full and incremental statements and no maintenance statement.
func NewTableDefinition(owningService, tableName, description string, owners []string, createTableStatement string) TableDefinition {
	return TableDefinition{
		OwningService:             owningService,
		TableName:                 tableName,
		TableDescription:          description,
		Owners:                    owners,
		CreateTableStatement:      createTableStatement,
		FullQueryStatement:        &QueryStatement{QueryType: QueryTypeMySQL},
		IncrementalQueryStatement: &QueryStatement{QueryType: QueryTypeMySQL},
	}
}

// TableRef identifies a certified table definition by id or by service and
// name. Nil fields are sent as absent.
type TableRef struct {
	TableID       *int64
	OwningService *string
	TableName     *string
}

// TableByName references a definition by owning service and table name.
func TableByName(owningService, tableName string) TableRef {
	return TableRef{OwningService: String(owningService), TableName: String(tableName)}
}

func (r TableRef) params() Params {
	return Params{
		"table_id":       optional(r.TableID),
		"owning_service": optional(r.OwningService),
		"table_name":     optional(r.TableName),
	}
}

// TableFilter narrows ListTableDefinitions. Nil fields do not filter.
type TableFilter struct {
	TableRef
	ForVisualization *bool
	ForSharing       *bool
}

func (f TableFilter) params() Params {
	p := f.TableRef.params()
	p["for_visualization"] = optional(f.ForVisualization)
	p["for_sharing"] = optional(f.ForSharing)
	return p
}

// TableSchedule holds the schedules for each statement of a definition.
type TableSchedule struct {
	FullQuery        *string
	IncrementalQuery *string
	MaintenanceQuery *string
}

// TableScheduleCancel selects which schedules to cancel.
type TableScheduleCancel struct {
	FullQuery        *bool
	IncrementalQuery *bool
	MaintenanceQuery *bool
}

// CreateTableDefinition registers def as a certified table definition.
func (c *Client) CreateTableDefinition(ctx context.Context, def TableDefinition) (int, string, error) {
	return c.callText(ctx, http.MethodPut, adminPath+"/createTableDefinition", nil, def)
}

// ListTableDefinitions returns the definitions matching f.
func (c *Client) ListTableDefinitions(ctx context.Context, f TableFilter) (int, Body, error) {
	return c.callBody(ctx, http.MethodGet, adminPath+"/listTableDefinitions", f.params(), nil)
}

// DeleteTableDefinition removes the definition referenced by ref.
func (c *Client) DeleteTableDefinition(ctx context.Context, ref TableRef) (int, string, error) {
	return c.callText(ctx, http.MethodDelete, adminPath+"/deleteTableDefinition", ref.params(), nil)
}

// ScheduleTableDefinitionRun sets the run schedules of a definition.
func (c *Client) ScheduleTableDefinitionRun(ctx context.Context, ref TableRef, s TableSchedule) (int, string, error) {
	p := ref.params()
	p["full_query_scheduling"] = optional(s.FullQuery)
	p["incremental_query_scheduling"] = optional(s.IncrementalQuery)
	p["maintenance_query_scheduling"] = optional(s.MaintenanceQuery)
	return c.callText(ctx, http.MethodPut, adminPath+"/scheduleTableDefinitionRun", p, nil)
}

// CancelTableDefinitionScheduling cancels the selected run schedules.
func (c *Client) CancelTableDefinitionScheduling(ctx context.Context, ref TableRef, s TableScheduleCancel) (int, string, error) {
	p := ref.params()
	p["cancel_full_query_scheduling"] = optional(s.FullQuery)
	p["cancel_incremental_query_scheduling"] = optional(s.IncrementalQuery)
	p["cancel_maintenance_query_scheduling"] = optional(s.MaintenanceQuery)
	return c.callText(ctx, http.MethodDelete, adminPath+"/cancelTableDefinitionScheduling", p, nil)
}

// CleanDataForTableDefinition empties the data table of a definition.
func (c *Client) CleanDataForTableDefinition(ctx context.Context, ref TableRef) (int, string, error) {
	return c.callText(ctx, http.MethodPut, adminPath+"/cleanDataForTableDefinition", ref.params(), nil)
}

// PopulateDataForTableDefinition runs the full query statement. queryParams
// is sent as the JSON body when non-nil.
func (c *Client) PopulateDataForTableDefinition(ctx context.Context, ref TableRef, queryParams map[string]any, noTableTruncating *bool) (int, string, error) {
	p := ref.params()
	p["no_table_truncating"] = optional(noTableTruncating)
	return c.callText(ctx, http.MethodPut, adminPath+"/populateDataForTableDefinition", p, jsonBody(queryParams))
}

// UpdateDataForTableDefinition runs the incremental query statement.
func (c *Client) UpdateDataForTableDefinition(ctx context.Context, ref TableRef, queryParams map[string]any) (int, string, error) {
	return c.callText(ctx, http.MethodPut, adminPath+"/updateDataForTableDefinition", ref.params(), jsonBody(queryParams))
}

// RunMaintenanceForTableDefinition runs the maintenance statement.
func (c *Client) RunMaintenanceForTableDefinition(ctx context.Context, ref TableRef) (int, string, error) {
	return c.callText(ctx, http.MethodPut, adminPath+"/runMaintenanceForTableDefinition", ref.params(), nil)
}

// jsonBody keeps a nil map from becoming a non-nil interface.
func jsonBody(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}
