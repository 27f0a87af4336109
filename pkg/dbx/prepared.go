package dbx

// PreparedStatement represents a named statement installed on every pooled
// connection when it is established, so it can be executed by name without
// re-parsing.
//
// Fields:
//   - Name: A unique name identifying the prepared statement.
//   - Query: The SQL query string associated with the prepared statement.
type PreparedStatement struct {
	Name  string
	Query string
}

// NewPreparedStatement creates a new prepared statement.
func NewPreparedStatement(name, query string) PreparedStatement {
	return PreparedStatement{Name: name, Query: query}
}

// GetName returns the name of the prepared statement.
func (p PreparedStatement) GetName() string {
	return p.Name
}

// GetQuery returns the query of the prepared statement.
func (p PreparedStatement) GetQuery() string {
	return p.Query
}
