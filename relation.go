package tabulate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jinzhu/gorm"
	"go.uber.org/zap"
)

//binding carries the per-request query while constraints are attached to it. It owns the
//join bookkeeping, so a relation referenced by search, filters and sort still produces a
//single LEFT JOIN on the final query.
type binding struct {
	query *gorm.DB

	table   string
	dialect string
	ms      *gorm.ModelStruct
	logger  *zap.Logger

	//joined maps lowercased relation field names to the related table already joined
	joined map[string]string
}

//column resolves a column Field into a quoted, table-qualified SQL expression. Dotted
//paths resolve through the gorm relationship and register the LEFT JOIN needed to reach
//the related table. Direct columns are qualified with the base table so they stay
//unambiguous once joins are present.
func (b *binding) column(field string) (string, error) {
	relation, column, nested := splitField(field)
	if !nested {
		return b.qualify(b.table, column), nil
	}

	table, err := b.join(relation)
	if err != nil {
		return "", err
	}
	return b.qualify(table, column), nil
}

//join resolves a relation by struct field name and attaches its LEFT JOIN to the query,
//at most once per relation. It returns the related table name.
func (b *binding) join(relation string) (string, error) {
	key := strings.ToLower(relation)
	if table, ok := b.joined[key]; ok {
		return table, nil
	}

	field, err := b.relationship(relation)
	if err != nil {
		return "", err
	}
	rel := field.Relationship

	table := b.query.NewScope(reflect.New(baseType(field.Struct.Type)).Interface()).TableName()

	var on []string
	switch rel.Kind {
	case "belongs_to":
		//the base table holds the foreign key
		for i, fk := range rel.ForeignDBNames {
			on = append(on, fmt.Sprintf("%s = %s", b.qualify(table, rel.AssociationForeignDBNames[i]), b.qualify(b.table, fk)))
		}
	case "has_one", "has_many":
		//the related table holds the foreign key
		for i, fk := range rel.ForeignDBNames {
			on = append(on, fmt.Sprintf("%s = %s", b.qualify(table, fk), b.qualify(b.table, rel.AssociationForeignDBNames[i])))
		}
	default:
		//many_to_many would need a join table hop, which is past the one level this supports
		return "", fmt.Errorf("relation %s: unsupported relationship kind %s", relation, rel.Kind)
	}

	clause := fmt.Sprintf("LEFT JOIN %s ON %s", b.quote(table), strings.Join(on, " AND "))
	b.query = b.query.Joins(clause)
	b.joined[key] = table
	b.logger.Debug("joined relation", zap.String("relation", relation), zap.String("clause", clause))

	return table, nil
}

//relationship finds the model's relationship struct field by name, case insensitively.
func (b *binding) relationship(relation string) (*gorm.StructField, error) {
	for _, f := range b.ms.StructFields {
		if f.Relationship != nil && strings.EqualFold(f.Name, relation) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("model %s has no relation %s", b.ms.ModelType.Name(), relation)
}

//primaryKey returns the qualified primary key expression of the base table.
func (b *binding) primaryKey() (string, error) {
	if len(b.ms.PrimaryFields) == 0 {
		return "", fmt.Errorf("model %s has no primary key", b.ms.ModelType.Name())
	}
	return b.qualify(b.table, b.ms.PrimaryFields[0].DBName), nil
}

//count counts matching rows with the current constraints, before ordering and paging are
//applied. DISTINCT on the primary key keeps to-many joins from inflating the total.
func (b *binding) count() (int, error) {
	pk, err := b.primaryKey()
	if err != nil {
		return 0, err
	}

	var total int
	row := b.query.Select(fmt.Sprintf("COUNT(DISTINCT %s)", pk)).Row()
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return total, nil
}

func (b *binding) qualify(table, column string) string {
	return b.quote(table) + "." + b.quote(column)
}

func (b *binding) quote(name string) string {
	return b.query.Dialect().Quote(name)
}

//baseType will return the fully unwrapped type of a field, slice or pointer
func baseType(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Array, reflect.Ptr, reflect.Slice:
		return baseType(t.Elem())
	}
	return t
}
