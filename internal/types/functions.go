package types

import (
	"fmt"

	"github.com/iley/minic/internal/ast"
)

type FuncProto struct {
	Name       string
	Params     []Param
	ReturnType ast.Type
}

type Param struct {
	Name string
	Typ  ast.Type
}

func GetFunctionTable(program *ast.Program) []FuncProto {
	protos := []FuncProto{}
	for _, fn := range program.Functions {
		proto := FuncProto{
			Name:       fn.Name,
			Params:     []Param{},
			ReturnType: fn.ReturnType,
		}
		for _, p := range fn.Args {
			proto.Params = append(proto.Params, Param{p.Name, p.Type})
		}
		protos = append(protos, proto)
	}
	return protos
}

func (p FuncProto) String() string {
	s := p.ReturnType.String() + " " + p.Name + "("
	for i, param := range p.Params {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s %s", param.Typ, param.Name)
	}
	return s + ")"
}

func FindFunction(protos []FuncProto, name string) (FuncProto, bool) {
	for _, proto := range protos {
		if proto.Name == name {
			return proto, true
		}
	}
	return FuncProto{}, false
}
