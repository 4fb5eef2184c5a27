package usecase

import (
	"fmt"
	"regexp"

	"github.com/user/linkcheck-service/pkg/utils"
)

// LinkPolicy decides which URLs the checker handles at all.
type LinkPolicy struct {
	schemes []string
	ignore  []*regexp.Regexp
}

// NewLinkPolicy compiles the permanently ignored link patterns.
func NewLinkPolicy(schemes, ignorePatterns []string) (*LinkPolicy, error) {
	p := &LinkPolicy{schemes: schemes}
	for _, pattern := range ignorePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		p.ignore = append(p.ignore, re)
	}
	return p, nil
}

// Checkable reports whether rawURL is an absolute URL with a valid scheme.
func (p *LinkPolicy) Checkable(rawURL string) bool {
	return utils.IsCheckableURL(rawURL, p.schemes)
}

// Ignored reports whether the link matches a permanently ignored pattern.
func (p *LinkPolicy) Ignored(link string) bool {
	for _, re := range p.ignore {
		if re.MatchString(link) {
			return true
		}
	}
	return false
}
