package tabulate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jinzhu/gorm"
	"go.uber.org/zap"
)

//Action is a named bulk operation over selected rows. The handler receives a query
//already restricted to the table's scopes and the selected primary keys, so an action
//can never reach rows outside the table.
type Action struct {
	Name    string
	Label   string
	Handler func(query *gorm.DB, keys []string) error
}

//ErrUnknownAction is returned by ApplyAction for action names that were never
//registered.
var ErrUnknownAction = errors.New("unknown bulk action")

//ApplyAction dispatches a bulk action by name against the selected row keys. An empty
//selection is a no-op.
func (t *Table) ApplyAction(name string, keys []string) error {
	action, ok := t.actions[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	if len(keys) == 0 {
		return nil
	}

	b := t.newBinding()
	for _, scope := range t.scopes {
		b.query = scope(b.query)
	}

	pk, err := b.primaryKey()
	if err != nil {
		return err
	}
	b.query = b.query.Where(fmt.Sprintf("%s IN (?)", pk), keys)

	t.logger.Debug("applying bulk action", zap.String("action", name), zap.Int("selected", len(keys)))
	if err := action.Handler(b.query, keys); err != nil {
		return fmt.Errorf("action %s: %w", name, err)
	}
	return nil
}

//actionList returns registered actions sorted by name for rendering.
func (t *Table) actionList() []Action {
	out := make([]Action, 0, len(t.actions))
	for _, a := range t.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
