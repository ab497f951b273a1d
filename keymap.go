package main

type Action int

const (
	ActionNone Action = iota

	ActionFocusEditor
	ActionFocusGrid
	ActionFocusSchema

	ActionRunQuery
	ActionCancelQuery

	ActionOpenConnectionManager
	ActionOpenConnectionForm
	ActionOpenHistoryPicker
	ActionOpenTablePicker
	ActionOpenHelp
	ActionToggleSchemaSidebar

	ActionGridSearch
	ActionGridSearchNext
	ActionGridSearchPrev
	ActionGridToggleRowSelect
	ActionGridCopy
	ActionGridDeleteRows
	ActionGridExport
	ActionGridEnterCellEdit
	ActionGridOpenJSONCell
	ActionGridWidenColumn
	ActionGridAutoFitColumn

	ActionQuit
)

var commandNames = map[string]Action{
	"q":           ActionQuit,
	"quit":        ActionQuit,
	"exit":        ActionQuit,
	"tables":      ActionOpenTablePicker,
	"history":     ActionOpenHistoryPicker,
	"conn":        ActionOpenConnectionManager,
	"connections": ActionOpenConnectionManager,
	"connect":     ActionOpenConnectionManager,
	"help":        ActionOpenHelp,
}

// ResolveCommand looks up a ":"-prefixed command verb (the part before
// any argument) against the fixed command table.
func ResolveCommand(verb string) (Action, bool) {
	a, ok := commandNames[verb]
	return a, ok
}
