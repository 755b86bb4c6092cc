// Package papertrade implements the engine of a simulated trading terminal:
// a watch-list of instruments kept up to date by asynchronous quote
// providers, and a virtual cash ledger to open and close positions against.
//
// The core functionalities include:
//   - Registry: the watch-list, at most one instrument per canonical symbol,
//     reconciled with freshly fetched quotes symbol by symbol.
//   - Ledger: a single cash balance and weighted-average-cost positions,
//     executing buy and sell orders atomically. Orders that would overdraw
//     the cash or sell more than owned are rejected without side effects.
//   - Providers: quotes, analysis, news and instrument lookup, all fallible
//     and possibly slow. Their failures degrade to the last known state or
//     to a placeholder, never to a crash.
//   - Terminal: the coordinator wiring provider results into the Registry
//     and executing orders at the Registry's current prices.
//
// State lives in memory only, for the duration of a session.
package papertrade
