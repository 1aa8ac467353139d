// Package crud holds the screen state of a CRUD page: a list that is
// always re-read from the backend, a form with a draft, and a confirmed
// delete. It knows nothing about HTTP or any particular entity; a Resource
// plugs those in.
//
// After every successful create, update or delete the list is reloaded
// exactly once. Nothing is patched in memory.
package crud
