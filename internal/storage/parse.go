package storage

import (
	"fmt"
	"regexp"
	"strings"
)

// volPathPattern finds the path column of a vol-list row: whitespace followed
// by a token containing a slash. Paths are not always unix paths (rbd pools
// print "pool/image"), so only the slash is required.
var volPathPattern = regexp.MustCompile(`\s+\S*/.*`)

// tableRows splits column-aligned virsh output into its header and data rows.
// It returns ok=false when there are no data rows.
func tableRows(text string) (header string, rows []string, ok bool) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) <= 2 {
		return "", nil, false
	}
	rows = lines[2:]
	for i := range rows {
		rows[i] = strings.TrimRight(rows[i], "\r")
	}
	return lines[0], rows, true
}

func isNameColumn(column string) bool {
	return strings.HasPrefix(column, "Name") || strings.HasPrefix(column, "name")
}

// ParsePoolList parses "virsh pool-list" output into records keyed by pool
// name:
//
//	 Name      State      Autostart
//	-----------------------------------
//	 default   active     yes
//	 scratch   inactive   no
//
// Output without data rows yields an empty map.
func ParsePoolList(text string) (map[string]PoolRecord, error) {
	pools := make(map[string]PoolRecord)

	header, rows, ok := tableRows(text)
	if !ok {
		return pools, nil
	}

	columns := strings.Fields(header)
	nameIdx := -1
	for i, c := range columns {
		if isNameColumn(c) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("%w: no name column in header %q", ErrMalformedOutput, header)
	}

	for _, row := range rows {
		fields := strings.Fields(row)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < len(columns) {
			return nil, fmt.Errorf("%w: row %q has %d fields, header has %d columns",
				ErrMalformedOutput, row, len(fields), len(columns))
		}

		record := make(PoolRecord, len(columns)-1)
		for i, c := range columns {
			if i == nameIdx {
				continue
			}
			record[c] = fields[i]
		}
		pools[fields[nameIdx]] = record
	}

	return pools, nil
}

// ParsePoolInfo parses "virsh pool-info" output. Only "key: value" lines with
// exactly one colon are kept.
func ParsePoolInfo(text string) map[string]string {
	info := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		parts := strings.Split(line, ":")
		if len(parts) != 2 {
			continue
		}
		info[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return info
}

// ParseVolList parses "virsh vol-list" output into volume name -> path:
//
//	 Name          Path
//	------------------------------------------------
//	 disk1.qcow2   /var/lib/libvirt/images/disk1.qcow2
//
// Rows without a recognisable path map to an empty string.
func ParseVolList(text string) map[string]string {
	volumes := make(map[string]string)

	_, rows, ok := tableRows(text)
	if !ok {
		return volumes
	}

	for _, row := range rows {
		loc := volPathPattern.FindStringIndex(row)
		if loc == nil {
			if name := strings.TrimSpace(row); name != "" {
				volumes[name] = ""
			}
			continue
		}
		name := strings.TrimLeft(row[:loc[0]], " \t")
		volumes[name] = strings.TrimSpace(row[loc[0]:loc[1]])
	}

	return volumes
}

// ParseVolInfo parses "virsh vol-info" output. The value is everything after
// the first colon, so values that contain colons survive intact.
func ParseVolInfo(text string) map[string]string {
	info := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		attr, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		info[attr] = strings.TrimSpace(value)
	}
	return info
}
