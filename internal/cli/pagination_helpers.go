package cli

import "fmt"

// resolvePageOffset turns the --page shorthand into a row offset.
// --page is 1-based and only meaningful with an explicit --limit.
func resolvePageOffset(limit int, limitSet bool, offset int, offsetSet bool, page int, pageSet bool) (int, error) {
	switch {
	case pageSet && offsetSet:
		return 0, fmt.Errorf("use either --offset or --page, not both")
	case pageSet && (!limitSet || limit <= 0):
		return 0, fmt.Errorf("--page requires --limit > 0")
	case pageSet && page < 1:
		return 0, fmt.Errorf("--page must be >= 1")
	case pageSet:
		return (page - 1) * limit, nil
	case offset < 0:
		return 0, nil
	}
	return offset, nil
}

// paginateFlatRows slices data[rowsKey] to the requested window and
// annotates the payload with the window bookkeeping all listing
// commands share: total, count, offset, and, when a limit is set,
// limit, total_pages, and next_offset for the following page.
func paginateFlatRows(data map[string]any, rowsKey string, limit *int, offset int) {
	if data == nil {
		return
	}
	rows := asSlice(data[rowsKey])
	if offset < 0 {
		offset = 0
	}

	total := len(rows)
	start := min(offset, total)
	end := total
	if limit != nil {
		switch {
		case *limit < 0:
			end = start
		case start+*limit < end:
			end = start + *limit
		}
	}

	data[rowsKey] = rows[start:end]
	data["total"] = total
	data["count"] = end - start
	data["offset"] = offset
	if limit != nil {
		data["limit"] = *limit
	}
	if limit != nil && *limit > 0 {
		data["total_pages"] = (total + *limit - 1) / *limit
	} else {
		delete(data, "total_pages")
	}
	if end < total {
		data["next_offset"] = end
	} else {
		delete(data, "next_offset")
	}
}
