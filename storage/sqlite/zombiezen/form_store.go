package zombiezen

import (
	"context"

	"github.com/q-jackboylan/skweak/frequency"
	"github.com/q-jackboylan/skweak/storage"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// FormStore keeps a form-frequency table in the forms table, one row per
// (form, variant) pair.
type FormStore struct {
	pool *sqlitex.Pool
}

var _ storage.FormRepository = (*FormStore)(nil)

func NewFormStore(pool *sqlitex.Pool) *FormStore {
	return &FormStore{pool: pool}
}

func (h *FormStore) Forms() (frequency.Table, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	table := frequency.Table{}
	err = sqlitex.Execute(conn, "SELECT form, variant, freq FROM forms", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			form := stmt.ColumnText(0)
			if table[form] == nil {
				table[form] = map[string]float64{}
			}
			table[form][stmt.ColumnText(1)] = stmt.ColumnFloat(2)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (h *FormStore) WriteForms(t frequency.Table) error {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer h.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return err
	}
	defer endFn(&err)

	if err = sqlitex.Execute(conn, "DELETE FROM forms", nil); err != nil {
		return err
	}

	for form, variants := range t {
		for variant, freq := range variants {
			err = sqlitex.Execute(conn, "INSERT INTO forms (form, variant, freq) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
				Args: []interface{}{form, variant, freq},
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}
