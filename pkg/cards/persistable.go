package cards

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"strings"

	"github.com/richard-senior/cardstats/internal/logger"
)

// Persistable is implemented by every struct stored through the tag driven helpers below.
// Columns come from the `column`, `dbtype`, `primary` and `index` struct tags.
type Persistable interface {
	GetTableName() string
	BeforeSave() error
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// CreateTable creates the table and its indexes for obj
func CreateTable(ctx context.Context, db execer, obj Persistable) error {
	tableName := obj.GetTableName()
	createSQL := generateCreateTableSQL(obj, tableName)

	logger.Debug("Creating table with SQL", createSQL)
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	for _, query := range generateIndexSQL(obj, tableName) {
		logger.Debug("Creating index with SQL", query)
		if _, err := db.ExecContext(ctx, query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// persistedFields walks the exported, typed fields of obj
func persistedFields(objType reflect.Type, fn func(i int, field reflect.StructField, column string)) {
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}
	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Tag.Get("dbtype") == "" {
			continue
		}
		column := field.Tag.Get("column")
		if column == "" {
			column = strings.ToLower(field.Name)
		}
		fn(i, field, column)
	}
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func generateCreateTableSQL(obj any, tableName string) string {
	var columns []string
	var primaryKeys []string

	persistedFields(reflect.TypeOf(obj), func(_ int, field reflect.StructField, column string) {
		dbType := field.Tag.Get("dbtype")
		if field.Tag.Get("primary") == "true" {
			primaryKeys = append(primaryKeys, column)
		}
		columns = append(columns, fmt.Sprintf("%s %s", column, dbType))
	})

	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj any, tableName string) []string {
	var indexSQL []string
	persistedFields(reflect.TypeOf(obj), func(_ int, field reflect.StructField, column string) {
		if field.Tag.Get("index") != "true" {
			return
		}
		indexSQL = append(indexSQL, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", tableName, column, tableName, column))
	})
	return indexSQL
}

// Insert adds obj as a new row
func Insert(ctx context.Context, db execer, obj Persistable) error {
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}

	tableName := obj.GetTableName()
	columns, placeholders, values, err := getInsertData(obj)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if _, err := db.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}
	return nil
}

// getInsertData extracts column names, placeholders, and values for INSERT
func getInsertData(obj any) ([]string, []string, []any, error) {
	objValue := reflect.Indirect(reflect.ValueOf(obj))

	var columns []string
	var placeholders []string
	var values []any
	var convErr error

	persistedFields(objValue.Type(), func(i int, _ reflect.StructField, column string) {
		if convErr != nil {
			return
		}
		v, err := columnValue(objValue.Field(i))
		if err != nil {
			convErr = fmt.Errorf("failed to convert column %s: %w", column, err)
			return
		}
		columns = append(columns, column)
		placeholders = append(placeholders, "?")
		values = append(values, v)
	})
	return columns, placeholders, values, convErr
}

// columnValue turns a field into something every sql driver accepts:
// Valuers are asked directly, nil pointers become NULL, other pointers are dereferenced
func columnValue(field reflect.Value) (any, error) {
	if field.Kind() == reflect.Ptr && field.IsNil() {
		if valuer, ok := field.Interface().(driver.Valuer); ok {
			return valuer.Value()
		}
		return nil, nil
	}
	if valuer, ok := field.Interface().(driver.Valuer); ok {
		return valuer.Value()
	}
	if field.Kind() == reflect.Ptr {
		return field.Elem().Interface(), nil
	}
	return field.Interface(), nil
}

// getSelectData extracts column names and scan destinations for SELECT
func getSelectData(obj any) ([]string, []any) {
	objValue := reflect.Indirect(reflect.ValueOf(obj))

	var columns []string
	var destinations []any
	persistedFields(objValue.Type(), func(i int, _ reflect.StructField, column string) {
		columns = append(columns, column)
		destinations = append(destinations, objValue.Field(i).Addr().Interface())
	})
	return columns, destinations
}

// FindAll reads every row of T's table, ordered by orderBy when given
func FindAll[T any, PT interface {
	*T
	Persistable
}](ctx context.Context, db execer, orderBy string) ([]PT, error) {
	var probe T
	tableName := PT(&probe).GetTableName()
	columns, _ := getSelectData(&probe)

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), tableName)
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	logger.Debug("FindAll SQL", query)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	var results []PT
	for rows.Next() {
		obj := PT(new(T))
		_, destinations := getSelectData(obj)
		if err := rows.Scan(destinations...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		results = append(results, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}
