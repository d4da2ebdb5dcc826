// Package printer renders matched documents for the terminal.
package printer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/thisisjab/docq/store"
)

// Print writes the documents to w as a JSON array, indented when pretty is
// set. Zero documents print as an empty array, not as nothing.
func Print(w io.Writer, docs []store.Document, pretty bool) error {
	if docs == nil {
		docs = []store.Document{}
	}

	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(docs, "", "  ")
	} else {
		data, err = json.Marshal(docs)
	}
	if err != nil {
		return fmt.Errorf("cannot encode documents: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
