package bis

import (
	"regexp"
	"strconv"
	"strings"
)

const fragmentPrefix = "#bis="

var fragmentPattern = regexp.MustCompile(`#bis=(.+)`)

// EncodeFragment renders ids as a share fragment, "#bis=1,2,3".
// No ids gives an empty string.
func EncodeFragment(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return fragmentPrefix + strings.Join(parts, ",")
}

// DecodeFragment extracts item ids from a share fragment in order.
// Tokens that aren't positive integers are dropped.
// A hash without a bis value gives nil.
func DecodeFragment(hash string) []int {
	match := fragmentPattern.FindStringSubmatch(hash)
	if match == nil {
		return nil
	}

	ids := []int{}
	for _, token := range strings.Split(match[1], ",") {
		id, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// UniqueIDs drops repeated ids, keeping the first occurrence of each
func UniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
