package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

// ApplyRules runs rules over the function symbols in order.
// names maps each symbol to its wrapper name, included tells whether the
// symbol is bound at all. Symbols no rule renamed map to themselves.
func ApplyRules(rules []Rule, symbols []string) (names map[string]string, included map[string]bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("apply rules: %w", err)
		}
	}()

	names = make(map[string]string, len(symbols))
	included = make(map[string]bool, len(symbols))
	taken := make(map[string]bool, len(symbols)) // to avoid collisions
	for _, sym := range symbols {
		if _, ok := names[sym]; ok {
			return nil, nil, fmt.Errorf("duplicate symbol: %v", sym)
		}
		names[sym] = sym
		included[sym] = true
		taken[sym] = true
	}

	for i, rule := range rules {
		for _, sym := range symbols {
			// Backrefs represent '\1', '\2' etc., created by capture groups
			// in the name selector.
			var backrefs []string
			if rule.Select.Name != nil {
				name := names[sym]
				m := rule.Select.Name.FindStringSubmatch(name)
				if len(m) == 0 || len(m[0]) != len(name) {
					continue
				}
				backrefs = m[1:]
			}

			renameTo := func(newName string) error {
				oldName := names[sym]
				if newName == oldName {
					return nil
				}
				if taken[newName] {
					return fmt.Errorf("rule %v: renaming %v to %v would cause a conflict",
						i+1, strconv.Quote(oldName), strconv.Quote(newName))
				}
				names[sym] = newName
				delete(taken, oldName)
				taken[newName] = true
				return nil
			}

			if rule.Actions.Rename != "" {
				oldnew := [2 * 9]string{
					`\1`, "",
					`\2`, "",
					`\3`, "",
					`\4`, "",
					`\5`, "",
					`\6`, "",
					`\7`, "",
					`\8`, "",
					`\9`, "",
				}
				for i := range min(len(backrefs), 9) {
					oldnew[2*i+1] = backrefs[i]
				}
				newName := strings.NewReplacer(oldnew[:]...).
					Replace(rule.Actions.Rename)
				if err := renameTo(newName); err != nil {
					return nil, nil, err
				}
			}

			if rule.Actions.Include != nil {
				included[sym] = *rule.Actions.Include
			}

			if rule.Actions.ToCasing != "" {
				name := names[sym]
				var newName string
				switch rule.Actions.ToCasing {
				case "camel":
					newName = strcase.ToCamel(name)
				case "lower-camel":
					newName = strcase.ToLowerCamel(name)
				case "snake":
					newName = strcase.ToSnake(name)
				default:
					return nil, nil, fmt.Errorf("rule %v: unknown casing: %v", i+1, rule.Actions.ToCasing)
				}
				if err := renameTo(newName); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	return
}

// ValidateRules checks rules without applying them.
func ValidateRules(rules []Rule) error {
	for i, rule := range rules {
		switch rule.Actions.ToCasing {
		case "", "camel", "lower-camel", "snake":
		default:
			return fmt.Errorf("rule %v: unknown casing: %v", i+1, rule.Actions.ToCasing)
		}
	}
	return nil
}
