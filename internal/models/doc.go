// Package models defines the core domain entities for Splitr.
//
// # Models
//
//   - User: a registered account
//   - Group: a named set of users sharing expenses, with roles
//   - Expense: a shared expense with per-participant splits
//   - Settlement: a payment that reduces debt between two users
//   - Invite: a redeemable token/code granting group membership
//
// # Design principles
//
//  1. Records reference each other by ID string, never by pointer, to
//     avoid circular references and keep them storage-shaped.
//  2. Expenses and settlements are immutable once created; the only
//     lifecycle operation besides creation is deletion. Balance views are
//     recomputed from the records, never stored.
//  3. Money is float64 with a 0.01 tolerance everywhere it is compared;
//     the ledger package is the single place that does arithmetic on it.
package models
