package render

import (
	"encoding/json"
	"io"

	"github.com/brogergvhs/malview/internal/overview"
)

type JSON struct{}

func (JSON) Ext() string { return "json" }

func (JSON) Write(w io.Writer, _ overview.Ref, rec *overview.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rec)
}
