package main

import (
	"time"

	"tsql/internal/celledit"
	"tsql/internal/dbsession"
	"tsql/internal/grid"
	"tsql/internal/history"
	"tsql/internal/schema"
)

// drainEvents is the consumer half of the Session's event channel, run on
// its own goroutine and forwarding every update through QueueUpdateDraw so
// it's safe to mutate tview state from here.
func (a *App) drainEvents() {
	for ev := range a.session.Events() {
		ev := ev
		a.app.QueueUpdateDraw(func() { a.handleSessionEvent(ev) })
	}
}

func (a *App) handleSessionEvent(ev dbsession.Event) {
	switch ev.Kind {
	case dbsession.EvConnected:
		a.status.SetConnectionStatus(dbsession.Connected)
		a.status.Message("connected in %s", ev.Duration)
		breadcrumbs.RecordDatabase("connect")
		a.session.LoadSchema()

	case dbsession.EvConnectError:
		a.status.SetConnectionStatus(dbsession.Error)
		a.status.ErrorWithSentry(ev.Err)

	case dbsession.EvConnectionLost:
		breadcrumbs.RecordSession("connection lost")
		a.running = false
		a.status.QueryFinished()
		a.status.SetConnectionStatus(dbsession.Error)
		a.status.Error(ev.Err)

	case dbsession.EvQueryFinished:
		a.running = false
		a.status.QueryFinished()
		a.status.SetInTransaction(a.session.InTransaction())
		if ev.RequestID != a.lastRequestID {
			return
		}
		a.buf.MarkSaved()
		a.history.Push(history.Entry{Query: a.lastQuery, RanAt: time.Now(), Connection: a.connectionName, Succeeded: true})

		// A bare command tag means the statement returned no row set
		// (DML, DDL, transaction control): report the tag and leave the
		// displayed grid alone.
		if ev.CommandTag != "" {
			a.status.Message("%s (%s)", ev.CommandTag, ev.Duration)
			return
		}

		a.model = grid.New(ev.Headers, ev.ColTypes, ev.Rows)
		a.model.Truncated = ev.Truncated
		a.view = grid.NewViewState()
		a.grid.SetModel(a.model, a.view)
		if len(ev.Rows) > 0 {
			a.setFocus(PaneGrid)
			src := grid.DetectSourceTable(a.lastQuery)
			if src != "" {
				a.model.SourceTable = src
				a.session.LoadTableMeta(ev.RequestID, src)
			}
		}

		msg := "%d rows (%s)"
		if ev.Truncated {
			msg = "%d+ rows, truncated (%s)"
		}
		a.status.Message(msg, len(ev.Rows), ev.Duration)

	case dbsession.EvQueryError:
		a.running = false
		a.status.QueryFinished()
		a.status.Error(ev.Err)
		a.history.Push(history.Entry{Query: a.lastQuery, RanAt: time.Now(), Connection: a.connectionName, Succeeded: false})

	case dbsession.EvQueryCancelled:
		breadcrumbs.RecordSession("query cancelled")
		a.running = false
		a.status.QueryFinished()
		a.status.Message("query cancelled")

	case dbsession.EvSchemaLoaded:
		a.schema = schema.Build(ev.SchemaRows)
		a.refreshSchemaTree()

	case dbsession.EvCellUpdated:
		if ev.Row < len(a.model.Rows) && ev.Col < len(a.model.Headers) {
			a.model.Rows[ev.Row][ev.Col] = ev.Value
		}
		a.cell = nil
		a.status.Message("updated")

	case dbsession.EvTableMetaLoaded:
		if ev.Table != a.model.SourceTable {
			return
		}
		a.model.PrimaryKeys = ev.PrimaryKeys
		// The introspected columns cover the whole table; the grid may
		// hold a subset in a different order, so join by name and only
		// fill types the driver left blank.
		byName := make(map[string]string, len(ev.Headers))
		for i, h := range ev.Headers {
			if i < len(ev.ColTypes) {
				byName[h] = ev.ColTypes[i]
			}
		}
		for i, h := range a.model.Headers {
			if i < len(a.model.ColTypes) && a.model.ColTypes[i] == "" {
				if t, ok := byName[h]; ok {
					a.model.ColTypes[i] = t
				}
			}
		}

	case dbsession.EvTestConnectionResult:
		a.handleTestConnectionResult(ev.Err)
	}
}

func (a *App) applyCellCommit(e *celledit.Editor) {
	if !a.model.HasValidPK() {
		a.status.Error(errNotEditable)
		return
	}
	pkValues := make(map[string]string, len(a.model.PrimaryKeys))
	for _, pk := range a.model.PrimaryKeys {
		idx := a.model.ColumnIndex(pk)
		if idx < 0 || e.Row >= len(a.model.Rows) || idx >= len(a.model.Rows[e.Row]) {
			a.status.Error(errNotEditable)
			return
		}
		pkValues[pk] = a.model.Rows[e.Row][idx]
	}
	pkAny := make([]any, 0, len(pkValues))
	for _, pk := range a.model.PrimaryKeys {
		pkAny = append(pkAny, pkValues[pk])
	}
	debugLogKeys("commit pk", pkAny)
	debugLogRow("commit row", toAnyRow(a.model.Rows[e.Row]))

	sqlText, err := grid.BuildUpdate(a.model, e.Row, e.Col, e.Value, pkValues)
	if err != nil {
		a.status.Error(err)
		return
	}
	a.session.SubmitUpdate(sqlText, e.Row, e.Col, e.Value)
	breadcrumbs.RecordDatabase("update cell")
}

// toAnyRow adapts a grid row's []string cells to the []any debugLogRow
// expects, since the grid stores every cell as its already-stringified
// display text.
func toAnyRow(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
