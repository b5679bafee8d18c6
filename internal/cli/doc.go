// Package cli is the interactive console front-end of scorekeeper.
//
// It drives the account and recovery services through a small REPL:
//   - register, login, logout
//   - recover (identity check followed by a password reset)
//   - list, update, delete
//
// App.Run blocks until the user exits, input ends or ctx is cancelled.
package cli
