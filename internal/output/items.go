package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nanw1103/yumako/internal/fstore"
	"github.com/nanw1103/yumako/pkg/timeutil"
)

// Pair is a key-value row for listing output.
type Pair struct {
	Key   string
	Value string
}

// FormatPairs outputs key-value pairs in the configured format.
func (f *Formatter) FormatPairs(pairs []Pair) error {
	switch f.format {
	case FormatJSON:
		return f.formatPairsJSON(pairs)
	case FormatCSV:
		return f.formatPairsCSV(pairs)
	default:
		return f.formatPairsText(pairs)
	}
}

// formatPairsText outputs pairs as an aligned table.
func (f *Formatter) formatPairsText(pairs []Pair) error {
	if len(pairs) == 0 {
		f.renderer.NoResults()
		return nil
	}

	rows := make([][]string, len(pairs))
	for i, p := range pairs {
		rows[i] = []string{p.Key, p.Value}
	}
	f.renderer.Table([]string{"KEY", "VALUE"}, rows)
	return nil
}

// formatPairsJSON outputs pairs as a JSON array.
func (f *Formatter) formatPairsJSON(pairs []Pair) error {
	type jsonPair struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}

	jsonPairs := make([]jsonPair, len(pairs))
	for i, p := range pairs {
		jsonPairs[i] = jsonPair{Key: p.Key, Value: p.Value}
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonPairs)
}

// formatPairsCSV outputs pairs in CSV format.
func (f *Formatter) formatPairsCSV(pairs []Pair) error {
	writer := csv.NewWriter(f.writer)
	defer writer.Flush()

	if err := writer.Write([]string{"key", "value"}); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := writer.Write([]string{p.Key, p.Value}); err != nil {
			return err
		}
	}
	return nil
}

// FormatObjects outputs store object listings in the configured format.
func (f *Formatter) FormatObjects(infos []fstore.ObjectInfo) error {
	switch f.format {
	case FormatJSON:
		return f.formatObjectsJSON(infos)
	case FormatCSV:
		return f.formatObjectsCSV(infos)
	default:
		return f.formatObjectsText(infos)
	}
}

// formatObjectsText outputs objects as an aligned table.
func (f *Formatter) formatObjectsText(infos []fstore.ObjectInfo) error {
	if len(infos) == 0 {
		f.renderer.NoResults()
		return nil
	}

	rows := make([][]string, len(infos))
	for i, info := range infos {
		rows[i] = []string{
			info.Key,
			timeutil.FormatBytes(info.Size),
			info.Modified.Format("2006-01-02 15:04:05"),
		}
	}
	f.renderer.Table([]string{"KEY", "SIZE", "MODIFIED"}, rows)
	return nil
}

// formatObjectsJSON outputs objects as a JSON array.
func (f *Formatter) formatObjectsJSON(infos []fstore.ObjectInfo) error {
	type jsonObject struct {
		Key      string `json:"key"`
		Size     int64  `json:"size"`
		Modified string `json:"modified"`
	}

	jsonObjects := make([]jsonObject, len(infos))
	for i, info := range infos {
		jsonObjects[i] = jsonObject{
			Key:      info.Key,
			Size:     info.Size,
			Modified: info.Modified.Format(time.RFC3339),
		}
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonObjects)
}

// formatObjectsCSV outputs objects in CSV format.
func (f *Formatter) formatObjectsCSV(infos []fstore.ObjectInfo) error {
	writer := csv.NewWriter(f.writer)
	defer writer.Flush()

	if err := writer.Write([]string{"key", "size", "modified"}); err != nil {
		return err
	}
	for _, info := range infos {
		record := []string{
			info.Key,
			strconv.FormatInt(info.Size, 10),
			info.Modified.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// FormatKeys outputs a plain key listing in the configured format.
func (f *Formatter) FormatKeys(keys []string) error {
	switch f.format {
	case FormatJSON:
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(keys)
	case FormatCSV:
		writer := csv.NewWriter(f.writer)
		defer writer.Flush()
		if err := writer.Write([]string{"key"}); err != nil {
			return err
		}
		for _, key := range keys {
			if err := writer.Write([]string{key}); err != nil {
				return err
			}
		}
		return nil
	default:
		if len(keys) == 0 {
			f.renderer.NoResults()
			return nil
		}
		for _, key := range keys {
			_, _ = fmt.Fprintln(f.writer, key)
		}
		return nil
	}
}
