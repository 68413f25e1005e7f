package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	sf "github.com/snowflakedb/gosnowflake"

	"github.com/kbukum/flowkit/catalog"
	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/table"
)

func loadSQL(ctx context.Context, entry *catalog.SQLDataSet, credentialsPath string) (*table.Table, error) {
	creds, err := catalog.LoadCredentials(credentialsPath)
	if err != nil {
		return nil, err
	}
	cred, err := creds.Get(entry.CredentialsKey)
	if err != nil {
		return nil, err
	}

	query, err := os.ReadFile(entry.SQLPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.SQLFileMissing(entry.SQLPath)
		}
		return nil, fmt.Errorf("datasource: reading %s: %w", entry.SQLPath, err)
	}

	driver, dsn, err := dsnFor(entry.Database, cred)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("datasource: opening %s connection: %w", entry.Database, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, string(query))
	if err != nil {
		return nil, fmt.Errorf("datasource: executing %s: %w", entry.SQLPath, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// dsnFor builds the driver name and DSN for a database kind. Kinds are
// matched case-insensitively.
func dsnFor(kind string, cred catalog.Credential) (driver, dsn string, err error) {
	switch strings.ToLower(kind) {
	case "snowflake":
		account := cred.Account
		if account == "" {
			account = cred.Server
		}
		cfg := &sf.Config{
			Account:   account,
			User:      cred.User,
			Password:  cred.Password,
			Database:  cred.Database,
			Schema:    cred.Schema,
			Warehouse: cred.Warehouse,
			Role:      cred.Role,
		}
		dsn, err := sf.DSN(cfg)
		if err != nil {
			return "", "", fmt.Errorf("datasource: building snowflake dsn: %w", err)
		}
		return "snowflake", dsn, nil
	case "sqlite":
		return "sqlite3", cred.Database, nil
	case "postgres":
		host := cred.Server
		if cred.Port != 0 {
			host = fmt.Sprintf("%s:%d", cred.Server, cred.Port)
		}
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cred.User, cred.Password),
			Host:   host,
			Path:   cred.Database,
		}
		if cred.Schema != "" {
			q := url.Values{}
			q.Set("search_path", cred.Schema)
			u.RawQuery = q.Encode()
		}
		return "pgx", u.String(), nil
	default:
		return "", "", errors.UnsupportedDatabase(kind)
	}
}

// scanRows drains a result set into a table. Driver byte slices become
// strings; everything else is stored as the driver returned it.
func scanRows(rows *sql.Rows) (*table.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("datasource: reading result columns: %w", err)
	}

	t := table.New(cols...)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("datasource: scanning row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		if err := t.Append(values); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("datasource: iterating result set: %w", err)
	}
	return t, nil
}
