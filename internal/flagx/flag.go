// Package flagx lets several components parse their own subset of the
// command line without tripping over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags named in allowed, together with their
// values. Both "-x value" and "-x=value" forms are recognized; a following
// argument that starts with "-" is never taken as a value.
func FilterArgs(args []string, allowed []string) []string {
	kept, _ := partitionArgs(args, allowed)
	return kept
}

// StripArgs is the complement of FilterArgs: it drops the named flags and
// their values and keeps everything else in order.
func StripArgs(args []string, names []string) []string {
	_, rest := partitionArgs(args, names)
	return rest
}

func partitionArgs(args []string, names []string) (matched, rest []string) {
	set := make(map[string]struct{}, len(names))
	for _, f := range names {
		set[f] = struct{}{}
	}

	matched = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, hit := set[name]; hit {
				matched = append(matched, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}
		if _, hit := set[arg]; !hit {
			rest = append(rest, arg)
			continue
		}
		matched = append(matched, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			matched = append(matched, args[i+1])
			i++
		}
	}
	return matched, rest
}

// ConfigFileFlagNames select the config file.
var ConfigFileFlagNames = []string{"-c", "-config", "--config"}

// ConfigFileFlag returns the value of -c / -config from os.Args, or "" when
// neither is present.
func ConfigFileFlag() string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], ConfigFileFlagNames))

	return path
}
