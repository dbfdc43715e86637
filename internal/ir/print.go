package ir

import (
	"fmt"
	"io"
	"strings"
)

// String returns a readable listing of the function.
func (f *Function) String() string {
	var sb strings.Builder
	_ = f.Print(&sb)
	return sb.String()
}

// Print writes a readable listing of the function to w.
func (f *Function) Print(w io.Writer) error {
	params := make([]string, len(f.params))
	for i, p := range f.params {
		params[i] = p.typ.String() + " " + p.String()
	}
	if _, err := fmt.Fprintf(w, "func %s(%s)", f.name, strings.Join(params, ", ")); err != nil {
		return err
	}
	if f.native != nil {
		_, err := fmt.Fprintln(w, " native")
		return err
	}
	if _, err := fmt.Fprintln(w, " {"); err != nil {
		return err
	}
	for _, a := range f.allocs {
		if _, err := fmt.Fprintf(w, "\t%s = alloca %s\n", a, a.typ.Elem); err != nil {
			return err
		}
	}
	for _, b := range f.blocks {
		if _, err := fmt.Fprintf(w, "%s:\n", b); err != nil {
			return err
		}
		for _, in := range b.instrs {
			if _, err := fmt.Fprintf(w, "\t%s\n", in.format()); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func (in *Instr) format() string {
	args := make([]string, len(in.Args))
	for i, a := range in.Args {
		args[i] = a.String()
	}
	var rhs string
	switch in.Op {
	case OpICmp:
		rhs = fmt.Sprintf("icmp %s %s", in.Pred, strings.Join(args, ", "))
	case OpExtract, OpInsert, OpGEP:
		rhs = fmt.Sprintf("%s %s, %d", in.Op, strings.Join(args, ", "), in.Index)
	case OpCall:
		rhs = "call " + in.Callee.name + "()"
	case OpBr, OpCondBr:
		targets := make([]string, len(in.Targets))
		for i, t := range in.Targets {
			targets[i] = t.String()
		}
		rhs = strings.TrimSpace(fmt.Sprintf("%s %s %s", in.Op, strings.Join(args, ", "), strings.Join(targets, ", ")))
	default:
		rhs = strings.TrimSpace(in.Op.String() + " " + strings.Join(args, ", "))
	}
	if in.typ == nil || in.typ.Kind == KindVoid {
		return rhs
	}
	return fmt.Sprintf("%s = %s : %s", in, rhs, in.typ)
}
