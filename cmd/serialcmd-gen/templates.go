package main

import (
	"fmt"
	"strings"
	"text/template"
)

// funcMap provides helper functions available to all templates.
var funcMap = template.FuncMap{
	"hex":   func(v uint64) string { return fmt.Sprintf("0x%02X", v) },
	"quote": func(s string) string { return fmt.Sprintf("%q", s) },
	"join":  strings.Join,
}

// templates holds all parsed code generation templates.
var templates = template.Must(template.New("").Funcs(funcMap).Parse(
	goHeaderTmpl +
		goStatusTmpl +
		goCodesTmpl +
		goRecordsTmpl +
		goProtocolTmpl +
		cHeaderTmpl,
))

// renderTemplate executes a named template into the builder.
func renderTemplate(b *strings.Builder, name string, data any) {
	if err := templates.ExecuteTemplate(b, name, data); err != nil {
		panic(fmt.Sprintf("template %s: %v", name, err))
	}
}

const goHeaderTmpl = `{{define "goHeader"}}// Code generated by serialcmd-gen from {{.Source}}. DO NOT EDIT.

package {{.Package}}

import (
	"log/slog"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
	"github.com/serialcmd/serialcmd-go/pkg/command"
	"github.com/serialcmd/serialcmd-go/pkg/log"
	"github.com/serialcmd/serialcmd-go/pkg/protocol"
	"github.com/serialcmd/serialcmd-go/pkg/status"
	"github.com/serialcmd/serialcmd-go/pkg/stream"
)

// Fingerprint identifies the wire layout these bindings were generated for.
const Fingerprint = {{quote .Fingerprint}}

{{end}}`

const goStatusTmpl = `{{define "goStatus"}}
{{- $t := .Status.Type}}
// {{$t}} is the status the device answers with.
type {{$t}} {{.Status.GoType}}

const (
{{- range .Status.Members}}
{{- if .Description}}
// {{.Const}}: {{.Description}}
{{- end}}
{{.Const}} {{$t}} = {{hex .Code}}
{{- end}}
)

// {{.Status.Var}} is the {{$t}} status enum.
var {{.Status.Var}} = status.MustEnum({{quote .Status.Name}}, {{.Status.OK}},
{{- range .Status.Members}}
status.Member[{{$t}}]{Code: {{.Const}}, Name: {{quote .Name}}},
{{- end}}
)

{{end}}`

const goCodesTmpl = `{{define "goCodes"}}
// Command codes.
const (
{{- range .Commands}}
{{.CodeConst}} {{$.CodeType}} = {{hex .Code}}
{{- end}}
)

{{end}}`

const goRecordsTmpl = `{{define "goRecords"}}
{{- range .Records}}
// {{.Name}} is {{.Doc}}.
type {{.Name}} struct {
{{- range .Fields}}
{{.Name}} {{.GoType}}
{{- end}}
}

{{end}}
{{- if .Records}}
var (
{{- range .Records}}
{{.Var}} = codec.MustRecord[{{.Name}}]()
{{- end}}
)
{{end}}
{{- end}}`

const goProtocolTmpl = `{{define "goProtocol"}}
// Options configures New.
type Options struct {
ConnectionID   string
Logger         *slog.Logger
ProtocolLogger log.Logger
}

// Protocol talks to one {{.Name}} device.
type Protocol struct {
p *protocol.Protocol[{{.Startup.GoType}}, {{.Status.Type}}]
{{- range .Commands}}
{{.Field}} *protocol.Handle[{{.Args.GoType}}, {{.Returns.GoType}}, {{$.Status.Type}}]
{{- end}}
}

// New registers every command on s. Call Begin before anything else.
func New(s stream.Stream, opts Options) (*Protocol, error) {
p, err := protocol.New(protocol.Config[{{.Startup.GoType}}, {{.Status.Type}}]{
Stream:         s,
CodeKind:       codec.{{.CodeKind}},
Policy:         command.MustRespondPolicy({{.Status.Var}}, codec.{{.StatusKind}}),
Startup:        {{.Startup.Serializer}},
Name:           {{quote .Name}},
ConnectionID:   opts.ConnectionID,
Logger:         opts.Logger,
ProtocolLogger: opts.ProtocolLogger,
})
if err != nil {
return nil, err
}
x := &Protocol{p: p}
{{- range .Commands}}
{{- if .Cached}}
if x.{{.Field}}, err = protocol.AddCached[{{.Args.GoType}}, {{.Returns.GoType}}](p, {{quote .Name}}, {{.Args.Serializer}}, {{.Returns.Serializer}}, command.DefaultCacheEntries); err != nil {
{{- else}}
if x.{{.Field}}, err = protocol.Add[{{.Args.GoType}}, {{.Returns.GoType}}](p, {{quote .Name}}, {{.Args.Serializer}}, {{.Returns.Serializer}}); err != nil {
{{- end}}
return nil, err
}
{{- end}}
return x, nil
}

// Protocol returns the underlying protocol.
func (x *Protocol) Protocol() *protocol.Protocol[{{.Startup.GoType}}, {{.Status.Type}}] { return x.p }

// Begin reads the startup frame.
func (x *Protocol) Begin() ({{.Startup.GoType}}, error) { return x.p.Begin() }
{{range .Commands}}
{{- if .Description}}
// {{.Method}}: {{.Description}}
{{- else}}
// {{.Method}} sends {{.Name}}.
{{- end}}
func (x *Protocol) {{.Method}}({{join .Args.Params ", "}}) (command.Result[{{.Returns.GoType}}, {{$.Status.Type}}], error) {
return x.{{.Field}}.Send({{.Args.Value}})
}
{{end}}
{{- end}}`

const cHeaderTmpl = `{{define "cHeader"}}/* Code generated by serialcmd-gen from {{.Source}}. DO NOT EDIT. */
#ifndef {{.Guard}}
#define {{.Guard}}

#include <stdbool.h>
#include <stdint.h>

#define {{.Prefix}}_FINGERPRINT {{quote .Fingerprint}}

typedef {{.CodeC}} {{.Lower}}_code_t;
typedef {{.Status.CType}} {{.Lower}}_status_t;

/* Command codes */
{{- range .Commands}}
#define {{$.Prefix}}_CMD_{{.CName}} {{hex .Code}} /* {{.Signature}} */
{{- end}}

/* {{.Status.Name}} */
{{- range .Status.Members}}
#define {{$.Prefix}}_{{.CName}} {{hex .Code}}
{{- end}}
{{range .Records}}
/* {{.Doc}} */
typedef struct __attribute__((packed)) {
{{- range .Fields}}
    {{.CType}} {{.CName}};
{{- end}}
} {{.CTypedef}};
{{end}}
#endif /* {{.Guard}} */
{{end}}`
