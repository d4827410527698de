package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	copilotdb "github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003"
)

var (
	flagDumpCollection string
	flagDumpLimit      int
	flagDumpFormat     string
)

var dumpCMD = &cobra.Command{
	Use:   "dump",
	Short: "Dump decoded documents",
	Long:  `Dump every decoded document of the store, optionally narrowed to one collection.`,
	Args:  cobra.NoArgs,
	RunE:  dumpFunc,
}

func init() {
	f := dumpCMD.Flags()
	f.StringVar(&flagDumpCollection, "collection", "", "Only documents of this collection")
	f.IntVar(&flagDumpLimit, "limit", 0, "Stop after this many documents, 0 for all")
	f.StringVar(&flagDumpFormat, "format", "json", "Output format: json, msgpack or spew")
}

// dumpedDocument is the export shape of one document.
type dumpedDocument struct {
	Collection string         `json:"collection" msgpack:"collection"`
	DocumentID string         `json:"document_id" msgpack:"document_id"`
	Fields     map[string]any `json:"fields" msgpack:"fields"`
}

func dumpFunc(cmd *cobra.Command, _ []string) error {
	switch flagDumpFormat {
	case "json", "msgpack", "spew":
	default:
		return fmt.Errorf("unknown format %q (want json, msgpack or spew)", flagDumpFormat)
	}

	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	cursor, err := e.accessor.Documents(e.cfg.DBPath, copilotdb.IterOptions{
		Collection: flagDumpCollection,
		Limit:      flagDumpLimit,
	})
	if err != nil {
		return err
	}
	defer cursor.Close()

	mpEnc := msgpack.NewEncoder(os.Stdout)
	for cursor.Next() {
		doc := cursor.Document()
		out := dumpedDocument{
			Collection: doc.Collection,
			DocumentID: doc.DocumentID,
			Fields:     doc.FieldsInterface(),
		}
		switch flagDumpFormat {
		case "json":
			if err := printJSON(cmd, out); err != nil {
				return err
			}
		case "msgpack":
			if err := mpEnc.Encode(out); err != nil {
				return err
			}
		case "spew":
			spew.Fdump(cmd.OutOrStdout(), out)
		}
	}
	return cursor.Err()
}
