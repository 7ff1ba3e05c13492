// Package suggest renders the search suggestion box: one column per object
// type (legislators and committees), each grouped by chamber, wrapped in a
// layout.
package suggest

import (
	"fmt"

	"github.com/deicod/jsonjinja/runtime"
)

// Kinds are the object types that get a column, in render order.
var Kinds = []string{"person", "committee"}

// GroupResults groups search hits by their "_type" field and then by
// "chamber". Hits without a "_type" are dropped.
func GroupResults(objects []map[string]interface{}) map[string]interface{} {
	results := make(map[string]interface{})
	for _, obj := range objects {
		kind, ok := obj["_type"].(string)
		if !ok || kind == "" {
			continue
		}
		chamber := runtime.ToString(obj["chamber"])

		byChamber, _ := results[kind].(map[string]interface{})
		if byChamber == nil {
			byChamber = make(map[string]interface{})
			results[kind] = byChamber
		}
		items, _ := byChamber[chamber].([]interface{})
		byChamber[chamber] = append(items, obj)
	}
	for _, kind := range Kinds {
		if _, ok := results[kind]; !ok {
			results[kind] = map[string]interface{}{}
		}
	}
	return results
}

// Count returns the number of upper and lower chamber entries in group.
// Joint entries are rendered but not counted.
func Count(group interface{}) (int, error) {
	count := 0
	for _, chamber := range []string{"lower", "upper"} {
		seq, err := runtime.SequenceFromIterable(runtime.GetItem(group, chamber))
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", chamber, err)
		}
		count += len(seq)
	}
	return count, nil
}

// Render builds the suggestion box for grouped results. Each non-empty kind
// is rendered into its column template and stored back as safe markup with
// a "<kind>_count" entry; empty kinds are removed. The layout is rendered
// last with abbr set. results is not modified.
func Render(cfg *runtime.Config, results map[string]interface{}, abbr string) (string, error) {
	vars := make(map[string]interface{}, len(results)+len(Kinds)+1)
	for k, v := range results {
		vars[k] = v
	}

	for _, kind := range Kinds {
		group := vars[kind]
		count, err := Count(group)
		if err != nil {
			return "", err
		}
		if count == 0 {
			delete(vars, kind)
			continue
		}

		vars[kind+"_count"] = count
		column, err := runtime.RenderTemplate(cfg, kind+".html", map[string]interface{}{
			"objects":     group,
			"object_type": kind,
			"count":       count,
		})
		if err != nil {
			return "", err
		}
		vars[kind] = runtime.MarkSafe(column)
	}

	vars["abbr"] = abbr
	return runtime.RenderTemplate(cfg, LayoutTemplate, vars)
}
