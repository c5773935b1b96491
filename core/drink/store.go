// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package drink

import (
	"context"
	"errors"
	"fmt"

	"github.com/relabs-tech/coffeeshop/core/csql"
	"github.com/relabs-tech/coffeeshop/core/logger"
)

// TableName is the name of the drink table
const TableName = "drink"

var (
	// ErrNotFound is returned when no drink has the requested id
	ErrNotFound = errors.New("drink not found")
	// ErrConflict is returned when a write violates the unique title
	ErrConflict = errors.New("drink title already exists")
)

// Store reads and writes drinks. Every write commits immediately.
type Store struct {
	db *csql.DB

	listQuery   string
	findQuery   string
	insertQuery string
	updateQuery string
	deleteQuery string
}

// NewStore returns a store on db. It does not touch the database, call
// CreateTable to make sure the table exists.
func NewStore(db *csql.DB) *Store {
	table := db.Table(TableName)
	return &Store{
		db:          db,
		listQuery:   "SELECT id, title, recipe FROM " + table + " ORDER BY id;",
		findQuery:   db.Rebind("SELECT id, title, recipe FROM " + table + " WHERE id = $1;"),
		insertQuery: db.Rebind("INSERT INTO " + table + " (title, recipe) VALUES($1, $2) RETURNING id;"),
		updateQuery: db.Rebind("UPDATE " + table + " SET title = $1, recipe = $2 WHERE id = $3;"),
		deleteQuery: db.Rebind("DELETE FROM " + table + " WHERE id = $1;"),
	}
}

// CreateTable creates the drink table if it does not exist yet
func (s *Store) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+s.db.Table(TableName)+` (
id `+s.db.SerialPrimaryKey()+`,
title varchar(80) NOT NULL UNIQUE,
recipe text NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("cannot create drink table: %w", err)
	}
	return nil
}

// Reset drops and recreates the drink table. All drinks are lost.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.db.DropTables(TableName); err != nil {
		return err
	}
	return s.CreateTable(ctx)
}

// Seed inserts the sample drink
func (s *Store) Seed(ctx context.Context) (*Drink, error) {
	d := &Drink{
		Title:  "water",
		Recipe: Recipe{{Name: "water", Color: "blue", Parts: 1}},
	}
	if err := s.Insert(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns all drinks ordered by id
func (s *Store) List(ctx context.Context) ([]*Drink, error) {
	rows, err := s.db.QueryContext(ctx, s.listQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drinks := []*Drink{}
	for rows.Next() {
		d := &Drink{}
		if err := rows.Scan(&d.ID, &d.Title, &d.Recipe); err != nil {
			return nil, err
		}
		drinks = append(drinks, d)
	}
	return drinks, rows.Err()
}

// Find returns the drink with the given id, or ErrNotFound
func (s *Store) Find(ctx context.Context, id int) (*Drink, error) {
	d := &Drink{}
	err := s.db.QueryRowContext(ctx, s.findQuery, id).Scan(&d.ID, &d.Title, &d.Recipe)
	if err == csql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Insert persists a new drink and sets its id
func (s *Store) Insert(ctx context.Context, d *Drink) error {
	err := s.db.QueryRowContext(ctx, s.insertQuery, d.Title, d.Recipe).Scan(&d.ID)
	if err != nil {
		return s.writeError(ctx, "insert", err)
	}
	return nil
}

// Update overwrites title and recipe of an existing drink
func (s *Store) Update(ctx context.Context, d *Drink) error {
	res, err := s.db.ExecContext(ctx, s.updateQuery, d.Title, d.Recipe, d.ID)
	if err != nil {
		return s.writeError(ctx, "update", err)
	}
	return s.expectOne(res.RowsAffected())
}

// Delete removes a drink
func (s *Store) Delete(ctx context.Context, d *Drink) error {
	res, err := s.db.ExecContext(ctx, s.deleteQuery, d.ID)
	if err != nil {
		return s.writeError(ctx, "delete", err)
	}
	return s.expectOne(res.RowsAffected())
}

func (s *Store) expectOne(count int64, err error) error {
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) writeError(ctx context.Context, operation string, err error) error {
	if csql.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	logger.FromContext(ctx).WithError(err).Errorf("cannot %s drink", operation)
	return fmt.Errorf("cannot %s drink: %w", operation, err)
}
