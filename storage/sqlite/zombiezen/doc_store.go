package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/q-jackboylan/skweak/document"
	"github.com/q-jackboylan/skweak/storage"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

type DocStore struct {
	pool *sqlitex.Pool
}

var _ storage.DocRepository = (*DocStore)(nil)

func NewDocStore(pool *sqlitex.Pool) *DocStore {
	return &DocStore{pool: pool}
}

func (h *DocStore) List() (document.Library, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	var docs document.Library
	err = sqlitex.Execute(conn, "SELECT id, title FROM docs ORDER BY id", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			docs = append(docs, &document.Doc{
				Id:    stmt.ColumnInt(0),
				Title: stmt.ColumnText(1),
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (h *DocStore) Read(id int) (*document.Doc, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	doc := &document.Doc{Id: id}
	found := false

	err = sqlitex.Execute(conn, "SELECT title, tokens FROM docs WHERE id = ?", &sqlitex.ExecOptions{
		Args: []interface{}{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			doc.Title = stmt.ColumnText(0)
			return json.Unmarshal([]byte(stmt.ColumnText(1)), &doc.Tokens)
		},
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("doc not found: %d", id)
	}

	err = sqlitex.Execute(conn, "SELECT source, start_idx, end_idx, label FROM spans WHERE doc_id = ? ORDER BY rowid", &sqlitex.ExecOptions{
		Args: []interface{}{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			source := stmt.ColumnText(0)
			span := document.Span{
				Start: stmt.ColumnInt(1),
				End:   stmt.ColumnInt(2),
				Label: stmt.ColumnText(3),
			}
			if doc.Spans == nil {
				doc.Spans = map[string][]document.Span{}
			}
			doc.Spans[source] = append(doc.Spans[source], span)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Write persists the document and all its span groups. An existing row with
// the same id is replaced.
func (h *DocStore) Write(d *document.Doc) error {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer h.pool.Put(conn)

	tokens, err := json.Marshal(d.Tokens)
	if err != nil {
		return err
	}

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return err
	}
	defer endFn(&err)

	err = sqlitex.Execute(conn, "INSERT OR REPLACE INTO docs (id, title, tokens) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
		Args: []interface{}{d.Id, d.Title, string(tokens)},
	})
	if err != nil {
		return err
	}

	err = sqlitex.Execute(conn, "DELETE FROM spans WHERE doc_id = ?", &sqlitex.ExecOptions{
		Args: []interface{}{d.Id},
	})
	if err != nil {
		return err
	}

	for source, group := range d.Spans {
		for _, span := range group {
			err = sqlitex.Execute(conn, "INSERT INTO spans (doc_id, source, start_idx, end_idx, label) VALUES (?, ?, ?, ?, ?)", &sqlitex.ExecOptions{
				Args: []interface{}{d.Id, source, span.Start, span.End, span.Label},
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (h *DocStore) Labels(pattern string) ([]string, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	var labels []string
	err = sqlitex.Execute(conn, "SELECT DISTINCT label FROM spans WHERE label LIKE '%' || ? || '%' ORDER BY label", &sqlitex.ExecOptions{
		Args: []interface{}{pattern},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			labels = append(labels, stmt.ColumnText(0))
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return labels, nil
}

func (h *DocStore) FindSpans(source, label string, onHit func(storage.SpanHit) error) error {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer h.pool.Put(conn)

	query := "SELECT s.doc_id, d.title, s.start_idx, s.end_idx, s.label FROM spans s JOIN docs d ON d.id = s.doc_id WHERE s.source = ?"
	args := []interface{}{source}
	if label != "" {
		query += " AND s.label = ?"
		args = append(args, label)
	}
	query += " ORDER BY s.doc_id, s.rowid"

	return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			return onHit(storage.SpanHit{
				DocId:    stmt.ColumnInt(0),
				DocTitle: stmt.ColumnText(1),
				Source:   source,
				Span: document.Span{
					Start: stmt.ColumnInt(2),
					End:   stmt.ColumnInt(3),
					Label: stmt.ColumnText(4),
				},
			})
		},
	})
}
