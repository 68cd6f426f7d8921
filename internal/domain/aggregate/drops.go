package aggregate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	bareNumber     = regexp.MustCompile(`^[\d,]+$`)
	negativeNumber = regexp.MustCompile(`(?i)^-[\d,]+x?$`)
	expAmount      = regexp.MustCompile(`(?i)^\d+\s*exp$`)
)

// ParseDrop splits a drop token into item name and quantity. Tokens read as
// "20 Gold", "Logs 14" or plain "Bones" (one unit). Experience strings the
// scraper mistook for items are rejected, as are tokens carrying a negative
// count such as "-5 Gold": a negative quantity reads as zero, which is no
// drop at all.
func ParseDrop(token string) (name string, quantity int64, ok bool) {
	token = strings.TrimSpace(token)
	if token == "" || bareNumber.MatchString(token) || expAmount.MatchString(token) {
		return "", 0, false
	}

	words := strings.Fields(token)
	if negativeNumber.MatchString(words[0]) || negativeNumber.MatchString(words[len(words)-1]) {
		return "", 0, false
	}
	quantity = 1
	name = token
	if len(words) > 1 {
		if n, isNum := count(words[0]); isNum {
			quantity, name = n, strings.Join(words[1:], " ")
		} else if n, isNum := count(words[len(words)-1]); isNum {
			quantity, name = n, strings.Join(words[:len(words)-1], " ")
		}
	}

	lower := strings.ToLower(name)
	if name == "" || strings.Contains(lower, "experience") || strings.Contains(lower+" ", "exp ") {
		return "", 0, false
	}
	return name, quantity, true
}

// count reads "1,200" or "5x".
func count(word string) (int64, bool) {
	word = strings.TrimSuffix(strings.ToLower(word), "x")
	if !bareNumber.MatchString(word) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(word, ",", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
