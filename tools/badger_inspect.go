package main

import (
	"chat-presence/domain"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	participantPrefix = "participant:"
	messagePrefix     = "msg:"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", messagePrefix, "Prefix to scan: msg: or participant:")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if err := inspect(db, *prefix, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// inspect prints every record under prefix as a table.
// Records that fail to decode are reported on their own row.
func inspect(db *badger.DB, prefix string, out io.Writer) error {
	header, decode, err := decoderFor(prefix)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				row, err := decode(key, v)
				if err != nil {
					row = make([]string, len(header))
					row[0] = key
					row[len(row)-1] = fmt.Sprintf("decode error: %v", err)
				}
				table.Append(row)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

type rowDecoder func(key string, value []byte) ([]string, error)

func decoderFor(prefix string) ([]string, rowDecoder, error) {
	switch {
	case strings.HasPrefix(prefix, participantPrefix):
		return []string{"Key", "Name", "Last status"}, participantRow, nil
	case strings.HasPrefix(prefix, messagePrefix):
		return []string{"Key", "Seq", "Time", "From", "To", "Type", "Text"}, messageRow, nil
	default:
		return nil, nil, fmt.Errorf("unsupported prefix %q, use %s or %s", prefix, messagePrefix, participantPrefix)
	}
}

func participantRow(key string, value []byte) ([]string, error) {
	var p domain.Participant
	if err := bson.Unmarshal(value, &p); err != nil {
		return nil, err
	}
	return []string{key, p.Name, p.LastSeenAt.Format(time.DateTime)}, nil
}

func messageRow(key string, value []byte) ([]string, error) {
	var m domain.Message
	if err := bson.Unmarshal(value, &m); err != nil {
		return nil, err
	}
	return []string{key, fmt.Sprint(m.Seq), m.Time, m.From, m.To, string(m.Kind), m.Text}, nil
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	db, err := badger.Open(opts)
	if err != nil {
		// A crashed server can leave a value log that needs truncating first
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			_ = db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
