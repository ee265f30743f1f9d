// This file exports and imports a document as JSONL: one symbol per line
// in symbols.jsonl and one subtree per line in blocks.jsonl, each subtree
// in clipboard payload form.
package sqlite

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/blockclip/internal/codec"
	"github.com/mesh-intelligence/blockclip/internal/logger"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// JSONL file names written by Export.
const (
	SymbolsFile = "symbols.jsonl"
	BlocksFile  = "blocks.jsonl"
)

// maxLineSize bounds one JSONL record; a subtree is one line.
const maxLineSize = 16 << 20

// readJSONL reads a JSONL file and returns each non-empty line that is
// valid JSON as a json.RawMessage. Lines that are not JSON are dropped
// without notice; records that are JSON but not a symbol or subtree are
// logged and skipped by Import.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}


// Export writes every symbol and subtree of the document into dir.
func (b *Backend) Export(ctx context.Context, dir string) error {
	symbols, err := b.Symbols()
	if err != nil {
		return err
	}
	roots, err := b.Roots(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	symRecords := make([]json.RawMessage, 0, len(symbols))
	for _, s := range symbols {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshaling symbol: %w", err)
		}
		symRecords = append(symRecords, data)
	}
	blockRecords := make([]json.RawMessage, 0, len(roots))
	for _, r := range roots {
		text, err := codec.Encode(&types.Payload{Blocks: []*types.BlockNode{r}})
		if err != nil {
			return err
		}
		blockRecords = append(blockRecords, json.RawMessage(text))
	}

	if err := writeJSONL(filepath.Join(dir, SymbolsFile), symRecords); err != nil {
		return err
	}
	return writeJSONL(filepath.Join(dir, BlocksFile), blockRecords)
}

// Import loads symbols and subtrees written by Export into the document.
// Symbols whose names already exist are kept as they are. Lines that do
// not decode are skipped. It returns the number of subtrees added.
func (b *Backend) Import(ctx context.Context, dir string) (int, error) {
	symRecords, err := readJSONL(filepath.Join(dir, SymbolsFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, err
	}
	blockRecords, err := readJSONL(filepath.Join(dir, BlocksFile))
	if err != nil {
		return 0, err
	}

	added := 0
	err = b.withTx(ctx, func(tx *sql.Tx) error {
		for _, raw := range symRecords {
			var rec types.Symbol
			if err := json.Unmarshal(raw, &rec); err != nil || rec.Name == "" {
				logger.Warn("import: skipping symbol record")
				continue
			}
			if _, err := lookupSymbol(ctx, tx, rec.Name); err == nil {
				continue
			}
			if _, err := createSymbol(ctx, tx, rec.SymbolID, rec.Name, rec.Type); err != nil {
				return err
			}
		}
		for _, raw := range blockRecords {
			p, err := codec.Decode(string(raw))
			if err != nil {
				logger.Warn("import: skipping subtree record: %v", err)
				continue
			}
			for _, root := range p.Blocks {
				if _, err := insertTree(ctx, tx, root, root.Position, true); err != nil {
					return err
				}
				added++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
