package sqm

import (
	"fmt"
	"strings"

	"github.com/brimdata/sqm/metamodel"
)

// Format renders a statement as indented text.  From-elements are shown
// with their ids so that shared references are visible, and selections
// with their inferred types.
func Format(stmt Statement) string {
	f := &formatter{tab: 2}
	switch stmt := stmt.(type) {
	case *SelectStatement:
		f.write("select statement")
		f.open()
		f.query(stmt.Query)
		f.close()
	case *InsertSelectStatement:
		f.write("insert into %s (", stmt.Target.Entity.Name)
		for k, field := range stmt.Fields {
			if k > 0 {
				f.write(", ")
			}
			f.write("%s", field.Attribute.Name)
		}
		f.write(")")
		f.open()
		f.ret()
		f.fromElement(stmt.Target)
		f.query(stmt.Query)
		f.close()
	case *UpdateStatement:
		f.write("update")
		if stmt.Versioned {
			f.write(" versioned")
		}
		f.open()
		f.ret()
		f.fromElement(stmt.Root)
		f.section("set")
		for _, a := range stmt.Set {
			f.ret()
			f.expr(a.Target)
			f.write(" = ")
			f.expr(a.Value)
		}
		f.close()
		f.where(stmt.Where)
		f.close()
	case *DeleteStatement:
		f.write("delete")
		f.open()
		f.ret()
		f.fromElement(stmt.Root)
		f.where(stmt.Where)
		f.close()
	default:
		f.write("unknown statement %T", stmt)
	}
	if params := stmt.Params(); len(params) > 0 {
		f.ret()
		f.write("parameters")
		f.open()
		for _, p := range params {
			f.ret()
			f.param(p)
			f.write(" : %s", typeName(p.AnticipatedType))
			if p.AllowMultiValued {
				f.write(" multi-valued")
			}
		}
		f.close()
	}
	return f.String()
}

// FormatExpr renders an expression on one line.
func FormatExpr(e Expr) string {
	f := &formatter{tab: 2}
	f.expr(e)
	return f.String()
}

type formatter struct {
	strings.Builder
	indent int
	tab    int
}

func (f *formatter) write(format string, args ...any) {
	if len(args) == 0 {
		f.WriteString(format)
		return
	}
	fmt.Fprintf(&f.Builder, format, args...)
}

func (f *formatter) ret() {
	f.WriteByte('\n')
	f.WriteString(strings.Repeat(" ", f.indent))
}

func (f *formatter) open() {
	f.indent += f.tab
}

func (f *formatter) close() {
	f.indent -= f.tab
}

func (f *formatter) section(name string) {
	f.ret()
	f.write("%s", name)
	f.open()
}

func (f *formatter) where(p Predicate) {
	if p == nil {
		return
	}
	f.section("where")
	f.ret()
	f.expr(p)
	f.close()
}

func (f *formatter) query(q *QuerySpec) {
	f.section("from")
	for _, space := range q.From.Spaces {
		f.ret()
		f.write("space")
		f.open()
		for _, e := range space.Elements() {
			f.ret()
			f.fromElement(e)
		}
		f.close()
	}
	f.close()
	if q.Select != nil {
		name := "select"
		if q.Select.Distinct {
			name += " distinct"
		}
		if q.Select.Inferred {
			name += " (inferred)"
		}
		f.section(name)
		for _, s := range q.Select.Selections {
			f.ret()
			f.expr(s.Expr)
			if s.Alias != "" {
				f.write(" as %s", s.Alias)
			}
			f.write(" : %s", typeName(s.Expr.Type()))
		}
		f.close()
	}
	f.where(q.Where)
	if len(q.GroupBy) > 0 {
		f.section("group by")
		for _, e := range q.GroupBy {
			f.ret()
			f.expr(e)
		}
		f.close()
	}
	if q.Having != nil {
		f.section("having")
		f.ret()
		f.expr(q.Having)
		f.close()
	}
	if len(q.OrderBy) > 0 {
		f.section("order by")
		for _, s := range q.OrderBy {
			f.ret()
			f.expr(s.Expr)
			f.write(" %s", s.Order)
			if s.Nulls != NullsDefault {
				f.write(" %s", s.Nulls)
			}
		}
		f.close()
	}
	if q.Limit != nil {
		f.ret()
		f.write("limit ")
		f.expr(q.Limit)
	}
	if q.Offset != nil {
		f.ret()
		f.write("offset ")
		f.expr(q.Offset)
	}
}

func (f *formatter) fromElement(e *FromElement) {
	switch e.Kind {
	case Root:
		f.write("root %s", e.Entity.Name)
	case CrossJoin:
		f.write("cross join %s", e.Entity.Name)
	case EntityJoin:
		f.write("%s join %s", e.JoinType, e.Entity.Name)
	case AttributeJoin:
		f.write("%s join", e.JoinType)
		if e.Implicit {
			f.write(" implicit")
		}
		if e.Fetched {
			f.write(" fetch")
		}
		f.write(" %s.%s", e.LHS, e.Attribute.AttributeName())
	}
	f.write(" %s", e)
	if e.On != nil {
		f.write(" on ")
		f.expr(e.On)
	}
}

func (f *formatter) param(p *Parameter) {
	if p.Named() {
		f.write(":%s", p.Name)
	} else {
		f.write("?%d", p.Position)
	}
}

func (f *formatter) exprs(exprs []Expr) {
	for k, e := range exprs {
		if k > 0 {
			f.write(", ")
		}
		f.expr(e)
	}
}

func (f *formatter) subquery(q *QuerySpec) {
	f.write("(")
	f.open()
	f.ret()
	f.write("subquery")
	f.open()
	f.query(q)
	f.close()
	f.close()
	f.ret()
	f.write(")")
}

func (f *formatter) collection(from *FromElement, c *PluralAttributeRef) {
	if from != nil {
		f.write("%s", from)
		return
	}
	f.expr(c)
}

func (f *formatter) expr(e Expr) {
	switch e := e.(type) {
	case nil:
		f.write("<nil>")
	case *EntityRef:
		f.write("%s", e.From)
	case *SingularAttributeRef:
		f.expr(e.Container)
		f.write(".%s", e.Attribute.Name)
	case *PluralAttributeRef:
		f.expr(e.Container)
		f.write(".%s", e.Attribute.Name)
	case *BasicElementRef:
		f.write("value(")
		f.collection(e.From, e.Collection)
		f.write(")")
	case *EmbeddableElementRef:
		f.write("value(")
		f.collection(e.From, e.Collection)
		f.write(")")
	case *EntityElementRef:
		f.write("value(")
		f.collection(e.From, e.Collection)
		f.write(")")
	case *BasicIndexRef:
		f.write("key(")
		f.collection(e.From, e.Collection)
		f.write(")")
	case *EmbeddableIndexRef:
		f.write("key(")
		f.collection(e.From, e.Collection)
		f.write(")")
	case *EntityIndexRef:
		f.write("key(")
		f.collection(e.From, e.Collection)
		f.write(")")
	case *MapEntryRef:
		f.write("entry(")
		f.collection(e.From, e.Collection)
		f.write(")")
	case *CollectionFunction:
		f.write("%s(", e.Name)
		f.expr(e.Arg)
		f.write(")")
	case *EntityTypeLiteral:
		f.write("type %s", e.Entity.Name)
	case *EntityTypeOf:
		f.write("type(")
		f.expr(e.Ref)
		f.write(")")
	case *ParameterizedEntityType:
		f.write("type(")
		f.param(e.Param)
		f.write(")")
	case *EnumConstant:
		f.write("%s.%s", e.Constant.Class.Name, e.Constant.Name)
	case *FieldConstant:
		f.write("%s.%s", e.Constant.Class.Name, e.Constant.Name)
	case *Literal:
		switch e.Kind {
		case StringLiteral, CharacterLiteral:
			f.write("'%s'", strings.ReplaceAll(e.Text, "'", "''"))
		case DateLiteral:
			f.write("{d '%s'}", e.Text)
		case TimeLiteral:
			f.write("{t '%s'}", e.Text)
		case TimestampLiteral:
			f.write("{ts '%s'}", e.Text)
		default:
			f.write("%s", e.Text)
		}
	case *Parameter:
		f.param(e)
	case *BinaryArithmetic:
		f.write("(")
		f.expr(e.LHS)
		f.write(" %s ", e.Op)
		f.expr(e.RHS)
		f.write(")")
	case *UnaryOperation:
		f.write("%s", e.Op)
		f.expr(e.Operand)
	case *Concat:
		f.write("(")
		f.expr(e.LHS)
		f.write(" || ")
		f.expr(e.RHS)
		f.write(")")
	case *CaseSimple:
		f.write("case ")
		f.expr(e.Operand)
		f.whens(e.Whens, e.Else)
	case *CaseSearched:
		f.write("case")
		f.whens(e.Whens, e.Else)
	case *Coalesce:
		f.write("coalesce(")
		f.exprs(e.Args)
		f.write(")")
	case *NullIf:
		f.write("nullif(")
		f.expr(e.LHS)
		f.write(", ")
		f.expr(e.RHS)
		f.write(")")
	case *AggregateFunction:
		f.write("%s(", e.Name)
		if e.Arg == nil {
			f.write("*")
		} else {
			if e.Distinct {
				f.write("distinct ")
			}
			f.expr(e.Arg)
		}
		f.write(")")
	case *Function:
		if e.Generic {
			f.write("function('%s'", e.Name)
			if len(e.Args) > 0 {
				f.write(", ")
			}
		} else {
			f.write("%s(", e.Name)
		}
		f.exprs(e.Args)
		f.write(")")
	case *Trim:
		f.write("trim(%s ", e.Spec)
		if e.Char != nil {
			f.expr(e.Char)
			f.write(" ")
		}
		f.write("from ")
		f.expr(e.Expr)
		f.write(")")
	case *Cast:
		f.write("cast(")
		f.expr(e.Expr)
		f.write(" as %s)", typeName(e.Target))
	case *Subquery:
		f.subquery(e.Query)
	case *SelectionRef:
		f.write("%s", e.Selection.Alias)
	case *DynamicInstantiation:
		if e.Target == ClassTarget {
			f.write("new %s(", e.Class.Name)
		} else {
			f.write("new %s(", e.Target)
		}
		for k, a := range e.Args {
			if k > 0 {
				f.write(", ")
			}
			f.expr(a.Expr)
			if a.Alias != "" {
				f.write(" as %s", a.Alias)
			}
		}
		f.write(")")
	case *Comparison:
		f.write("(")
		f.expr(e.LHS)
		f.write(" %s ", e.Op)
		f.expr(e.RHS)
		f.write(")")
	case *Between:
		f.expr(e.Expr)
		f.not(e.Not)
		f.write(" between ")
		f.expr(e.Lower)
		f.write(" and ")
		f.expr(e.Upper)
	case *InList:
		f.expr(e.Expr)
		f.not(e.Not)
		f.write(" in (")
		f.exprs(e.List)
		f.write(")")
	case *InSubquery:
		f.expr(e.Expr)
		f.not(e.Not)
		f.write(" in ")
		f.expr(e.Subquery)
	case *Like:
		f.expr(e.Expr)
		f.not(e.Not)
		f.write(" like ")
		f.expr(e.Pattern)
		if e.Escape != nil {
			f.write(" escape ")
			f.expr(e.Escape)
		}
	case *IsNull:
		f.expr(e.Expr)
		f.write(" is")
		f.not(e.Not)
		f.write(" null")
	case *IsEmpty:
		f.expr(e.Collection)
		f.write(" is")
		f.not(e.Not)
		f.write(" empty")
	case *MemberOf:
		f.expr(e.Expr)
		f.not(e.Not)
		f.write(" member of ")
		f.expr(e.Collection)
	case *Exists:
		if e.Not {
			f.write("not ")
		}
		f.write("exists ")
		f.expr(e.Subquery)
	case *Junction:
		f.write("(")
		f.expr(e.LHS)
		f.write(" %s ", e.Op)
		f.expr(e.RHS)
		f.write(")")
	case *Negated:
		f.write("not ")
		f.expr(e.Pred)
	case *BooleanExpr:
		f.expr(e.Expr)
	default:
		f.write("<unknown %T>", e)
	}
}

func (f *formatter) not(not bool) {
	if not {
		f.write(" not")
	}
}

func (f *formatter) whens(whens []CaseWhen, els Expr) {
	for _, w := range whens {
		f.write(" when ")
		f.expr(w.When)
		f.write(" then ")
		f.expr(w.Then)
	}
	if els != nil {
		f.write(" else ")
		f.expr(els)
	}
	f.write(" end")
}

func typeName(t metamodel.Type) string {
	if t == nil {
		return "?"
	}
	return t.TypeName()
}
