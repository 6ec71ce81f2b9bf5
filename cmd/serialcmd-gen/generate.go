package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/serialcmd/serialcmd-go/pkg/catalog"
	"github.com/serialcmd/serialcmd-go/pkg/codec"
)

// --- Template data types ---

type bindingData struct {
	Source      string
	Package     string
	Name        string
	Fingerprint string

	// Go
	CodeKind   string
	CodeType   string
	StatusKind string
	Status     statusData
	Startup    shapeData
	Commands   []commandData
	Records    []recordData

	// C
	Prefix string
	Lower  string
	Guard  string
	CodeC  string
}

type statusData struct {
	Name    string
	Type    string
	Var     string
	GoType  string
	CType   string
	OK      string
	Members []memberData
}

type memberData struct {
	Name        string
	Code        uint64
	Const       string
	CName       string
	Description string
}

type commandData struct {
	Name        string
	Code        uint64
	CodeConst   string
	CName       string
	Method      string
	Field       string
	Cached      bool
	Description string
	Signature   string
	Args        shapeData
	Returns     shapeData
}

// shapeData is a catalogue shape rendered as Go: its type, the serializer
// expression and, for arguments, the method parameters and the value passed
// to Send.
type shapeData struct {
	GoType     string
	Serializer string
	Params     []string
	Value      string
}

type recordData struct {
	Name     string
	Var      string
	Doc      string
	CTypedef string
	Fields   []fieldData
}

type fieldData struct {
	Name   string
	GoType string
	CType  string
	CName  string
}

// reservedMethods are generated on every Protocol.
var reservedMethods = map[string]bool{"Protocol": true, "Begin": true}

var kindIdents = map[codec.Kind]string{
	codec.KindU8: "U8", codec.KindU16: "U16", codec.KindU32: "U32", codec.KindU64: "U64",
	codec.KindI8: "I8", codec.KindI16: "I16", codec.KindI32: "I32", codec.KindI64: "I64",
	codec.KindF32: "F32", codec.KindF64: "F64", codec.KindBool: "Bool",
}

func goType(k codec.Kind) string {
	switch k {
	case codec.KindF32:
		return "float32"
	case codec.KindF64:
		return "float64"
	case codec.KindBool:
		return "bool"
	}
	return strings.NewReplacer("u", "uint", "i", "int").Replace(k.String())
}

func cType(k codec.Kind) string {
	switch k {
	case codec.KindF32:
		return "float"
	case codec.KindF64:
		return "double"
	case codec.KindBool:
		return "bool"
	}
	return goType(k) + "_t"
}

// buildData prepares the template data for c. source is the catalogue file
// name recorded in the generated header.
func buildData(c *catalog.Catalog, source, pkg string) (*bindingData, error) {
	if pkg == "" {
		pkg = strings.ToLower(strings.Join(splitWords(c.Name), ""))
	}
	if !validIdent(pkg) {
		return nil, fmt.Errorf("package name %q is not a Go identifier", pkg)
	}

	d := &bindingData{
		Source:      filepath.Base(source),
		Package:     pkg,
		Name:        c.Name,
		Fingerprint: c.Fingerprint(),
		CodeKind:    "Kind" + kindIdents[c.Protocol.Code.Kind],
		CodeType:    goType(c.Protocol.Code.Kind),
		StatusKind:  "Kind" + kindIdents[c.Protocol.Status.Kind],
		Prefix:      cName(c.Name),
		Lower:       cLower(c.Name),
		CodeC:       cType(c.Protocol.Code.Kind),
	}
	d.Guard = d.Prefix + "_COMMANDS_H"

	st, err := buildStatus(c)
	if err != nil {
		return nil, err
	}
	d.Status = st

	if d.Startup, err = d.shape(c.Protocol.Startup, "StartupFrame", "the startup frame", false); err != nil {
		return nil, err
	}

	for i, cmd := range c.Commands {
		method := goTitleCase(cmd.Name)
		if !validIdent(method) {
			return nil, fmt.Errorf("command %q does not map to a Go identifier", cmd.Name)
		}
		if reservedMethods[method] {
			return nil, fmt.Errorf("command %q collides with Protocol.%s", cmd.Name, method)
		}
		field := firstLower(method)
		if !validIdent(field) || field == "p" {
			field += "Cmd"
		}
		cd := commandData{
			Name:        cmd.Name,
			Code:        uint64(i),
			CodeConst:   "Code" + method,
			CName:       cName(cmd.Name),
			Method:      method,
			Field:       field,
			Cached:      cmd.Cached,
			Description: cmd.Description,
			Signature:   fmt.Sprintf("%s(%s) -> %s", cmd.Name, cmd.Args, cmd.Returns),
		}
		if cd.Args, err = d.shape(cmd.Args, method+"Args", "the "+cmd.Name+" request", true); err != nil {
			return nil, err
		}
		if cd.Returns, err = d.shape(cmd.Returns, method+"Result", "the "+cmd.Name+" reply", false); err != nil {
			return nil, err
		}
		d.Commands = append(d.Commands, cd)
	}
	return d, nil
}

func buildStatus(c *catalog.Catalog) (statusData, error) {
	typ := goTitleCase(c.Status.Name)
	if !validIdent(typ) {
		return statusData{}, fmt.Errorf("status enum %q does not map to a Go identifier", c.Status.Name)
	}
	st := statusData{
		Name:   c.Status.Name,
		Type:   typ,
		Var:    typ + "Enum",
		GoType: goType(c.Protocol.Status.Kind),
		CType:  cType(c.Protocol.Status.Kind),
	}
	for _, m := range c.Status.Members {
		md := memberData{
			Name:        m.Name,
			Code:        m.Code,
			Const:       typ + goTitleCase(m.Name),
			CName:       cName(c.Status.Name) + "_" + cName(m.Name),
			Description: m.Description,
		}
		if !validIdent(md.Const) {
			return statusData{}, fmt.Errorf("status %q does not map to a Go identifier", m.Name)
		}
		if m.Name == c.Status.OK {
			st.OK = md.Const
		}
		st.Members = append(st.Members, md)
	}
	return st, nil
}

// shape renders s. Tuples become a record named recordName.
func (d *bindingData) shape(s catalog.Shape, recordName, doc string, args bool) (shapeData, error) {
	switch len(s) {
	case 0:
		return shapeData{GoType: "codec.None", Serializer: "codec.Void", Value: "codec.None{}"}, nil
	case 1:
		sd := shapeData{GoType: goType(s[0]), Serializer: "codec." + kindIdents[s[0]]}
		if args {
			sd.Params = []string{"arg " + sd.GoType}
			sd.Value = "arg"
		}
		return sd, nil
	}

	rec := recordData{
		Name:     recordName,
		Var:      firstLower(recordName) + "Codec",
		Doc:      doc,
		CTypedef: d.Lower + "_" + cLower(recordName) + "_t",
	}
	var fields []string
	sd := shapeData{GoType: recordName, Serializer: rec.Var}
	prefix := "Ret"
	if args {
		prefix = "Arg"
	}
	for i, k := range s {
		f := fieldData{
			Name:   fmt.Sprintf("%s%d", prefix, i),
			GoType: goType(k),
			CType:  cType(k),
			CName:  fmt.Sprintf("%s%d", strings.ToLower(prefix), i),
		}
		rec.Fields = append(rec.Fields, f)
		if args {
			sd.Params = append(sd.Params, f.CName+" "+f.GoType)
			fields = append(fields, f.Name+": "+f.CName)
		}
	}
	if args {
		sd.Value = recordName + "{" + strings.Join(fields, ", ") + "}"
	}
	d.Records = append(d.Records, rec)
	return sd, nil
}

// GenerateGo renders the Go bindings (unformatted).
func GenerateGo(d *bindingData) string {
	var b strings.Builder
	renderTemplate(&b, "goHeader", d)
	renderTemplate(&b, "goStatus", d)
	if len(d.Commands) > 0 {
		renderTemplate(&b, "goCodes", d)
	}
	renderTemplate(&b, "goRecords", d)
	renderTemplate(&b, "goProtocol", d)
	return b.String()
}

// GenerateHeader renders the C header for the firmware side.
func GenerateHeader(d *bindingData) string {
	var b strings.Builder
	renderTemplate(&b, "cHeader", d)
	return b.String()
}
