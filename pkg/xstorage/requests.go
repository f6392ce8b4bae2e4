// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xstorage

import (
	"fmt"
	"reflect"
	"strings"
)

// columnsOf walks the db-tagged fields of a record struct.
// With omitNil set, nil pointer fields (and a zero ID) are skipped,
// which turns a partially filled record into a filter.
func columnsOf(i interface{}, omitNil bool) (columns []string) {
	v := reflect.Indirect(reflect.ValueOf(i))

	for n := 0; n < v.NumField(); n++ {
		columnName := v.Type().Field(n).Tag.Get("db")
		if columnName == "" {
			continue
		}

		if v.Type().Field(n).Name == "ID" && v.Field(n).IsZero() {
			continue
		}

		field := v.Field(n)
		if omitNil && field.Kind() == reflect.Ptr && field.IsNil() {
			continue
		}
		columns = append(columns, columnName)
	}

	return
}

func whereClause(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%v=:%v", n, n))
	}
	return strings.Join(parts, " AND ")
}

// SelectQuery builds a named SELECT over the non-nil fields of filter.
// An empty filter selects the whole table.
func SelectQuery(table string, filter interface{}) string {
	names := columnsOf(filter, true)
	if len(names) == 0 {
		return fmt.Sprintf("SELECT * FROM %v", table)
	}

	return fmt.Sprintf("SELECT * FROM %v WHERE %v", table, whereClause(names))
}

// InsertQuery builds a named INSERT covering every db-tagged field of rec.
func InsertQuery(table string, rec interface{}) string {
	names := columnsOf(rec, false)

	fields := strings.Join(names, ", ")
	refs := ":" + strings.Join(names, ", :")
	return fmt.Sprintf("INSERT INTO %v (%v) VALUES (%v)", table, fields, refs)
}

// DeleteQuery builds a named DELETE over the non-nil fields of filter.
// Refuses an empty filter: deleting a whole table must be spelled out
// by the caller, not produced by a zero value.
func DeleteQuery(table string, filter interface{}) (string, error) {
	names := columnsOf(filter, true)
	if len(names) == 0 {
		return "", fmt.Errorf("refusing to build DELETE without a filter for table %v", table)
	}

	return fmt.Sprintf("DELETE FROM %v WHERE %v", table, whereClause(names)), nil
}
