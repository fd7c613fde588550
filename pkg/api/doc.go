// Package api defines the data types shared across the setup service
//
// This package contains the workflow and state definitions, user accounts,
// permissions, setup events, and HTTP response messages
package api
