package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type (
	// WorkflowID is the primary key of a workflow definition
	WorkflowID int64

	// StateID is the primary key of a workflow state definition
	StateID int64

	// UserID is the primary key of a user account
	UserID int64
)

// IDListSeparator separates primary keys in a multiple-object request
const IDListSeparator = ","

var (
	ErrInvalidID     = errors.New("invalid identifier")
	ErrEmptyIDList   = errors.New("identifier list is empty")
	ErrNonPositiveID = errors.New("identifier must be positive")
)

// ParseID parses a single positive primary key
func ParseID[T ~int64](s string) (T, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrNonPositiveID, v)
	}
	return T(v), nil
}

// ParseIDList parses a comma-separated list of primary keys, keeping the
// order given and dropping repeats
func ParseIDList[T ~int64](s string) ([]T, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptyIDList
	}
	parts := strings.Split(s, IDListSeparator)
	res := make([]T, 0, len(parts))
	seen := make(map[T]struct{}, len(parts))
	for _, p := range parts {
		id, err := ParseID[T](p)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res, nil
}

// FormatIDList renders primary keys in the form accepted by ParseIDList
func FormatIDList[T ~int64](ids []T) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, IDListSeparator)
}

func (id WorkflowID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id StateID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
