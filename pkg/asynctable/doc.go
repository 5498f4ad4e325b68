// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package asynctable implements two-phase tables over a Prometheus-compatible backend.

A root query produces one row per entity. Once the visible rows are known, row queries
fetch the expensive columns for those rows only, and their results are merged into the
existing rows as they arrive.

Table is a single-owner state machine: it hands out requests and applies responses,
it never performs I/O. Runner drives a Table on one goroutine and executes the requests
against a Querier.
*/
package asynctable
