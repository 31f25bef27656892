// Package deeplink разбирает и строит параметры /start вида verb_arg.
package deeplink

import (
	"strconv"
	"strings"
)

type Verb string

const (
	Take    Verb = "take"
	Filters Verb = "filters"
	List    Verb = "list"
	View    Verb = "view"
)

type Action struct {
	Verb   Verb
	Arg    string
	Offset int
}

// Parse распознаёт take_<id>, filters, list_<offset> и view_<id>.
// Всё остальное, включая пустой или битый аргумент, даёт ok=false.
func Parse(raw string) (Action, bool) {
	raw = strings.TrimSpace(raw)
	verb, arg, hasArg := strings.Cut(raw, "_")
	switch Verb(verb) {
	case Filters:
		if hasArg {
			return Action{}, false
		}
		return Action{Verb: Filters}, true
	case Take, View:
		if !hasArg || arg == "" {
			return Action{}, false
		}
		return Action{Verb: Verb(verb), Arg: arg}, true
	case List:
		n, err := strconv.Atoi(arg)
		if !hasArg || err != nil || n < 0 {
			return Action{}, false
		}
		return Action{Verb: List, Arg: arg, Offset: n}, true
	}
	return Action{}, false
}

func TakeParam(reportID string) string { return string(Take) + "_" + reportID }
func ViewParam(reportID string) string { return string(View) + "_" + reportID }
func ListParam(offset int) string      { return string(List) + "_" + strconv.Itoa(offset) }
func FiltersParam() string             { return string(Filters) }

// URL — ссылка t.me на бота с параметром start.
func URL(bot, param string) string {
	return "https://t.me/" + bot + "?start=" + param
}
