package apidesc

import (
	"strconv"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/metaverse/restdesc/deftree"
	"github.com/metaverse/restdesc/httprule"
	"github.com/metaverse/restdesc/pathtemplate"
)

// Endpoint is one registered http binding of an rpc method. An Endpoint
// missing any of Rule, Method or Template is ignored when describing.
type Endpoint struct {
	Rule     *httprule.Rule
	Method   *deftree.Method
	Template *pathtemplate.Template
	// Binding is 0 for the method's own rule and i for its i'th additional
	// binding.
	Binding int
}

// Label returns a name for the endpoint unique within its service: the
// method name, followed by the binding index spelled out in English for
// additional bindings. "GetShelf", "GetShelfOne", "GetShelfTwo".
func (e Endpoint) Label() string {
	if e.Method == nil {
		return ""
	}
	if e.Binding == 0 {
		return e.Method.Name
	}
	return e.Method.Name + EnglishNumber(e.Binding)
}

// Endpoints returns an Endpoint for every http binding of every method of
// the services in tree declared in one of files, or in any file if none
// are given. Bindings without a pattern are left out; a path template that
// does not parse is an error.
func Endpoints(tree *deftree.Tree, files ...string) ([]Endpoint, error) {
	include := make(map[string]bool)
	for _, f := range files {
		include[f] = true
	}

	var rv []Endpoint
	for _, svc := range tree.Services {
		if len(include) > 0 && !include[svc.File] {
			continue
		}
		for _, meth := range svc.Methods {
			if meth.HTTP == nil {
				log.WithField("method", meth.FullName()).Debug("no http annotation, skipping")
				continue
			}
			for i, rule := range meth.HTTP.Bindings() {
				_, path, ok := httprule.Resolve(rule)
				if !ok {
					log.WithField("method", meth.FullName()).
						WithField("binding", i).
						Debug("no http pattern set, skipping")
					continue
				}
				tmpl, err := pathtemplate.Parse(path)
				if err != nil {
					return nil, errors.Wrapf(err, "invalid http binding %d of %s", i, meth.FullName())
				}
				rule := rule
				rv = append(rv, Endpoint{
					Rule:     &rule,
					Method:   meth,
					Template: tmpl,
					Binding:  i,
				})
			}
		}
	}
	return rv, nil
}

// DigitEnglish is a map of runes of digits zero to nine to their lowercase
// english language spellings.
var DigitEnglish = map[rune]string{
	'0': "zero",
	'1': "one",
	'2': "two",
	'3': "three",
	'4': "four",
	'5': "five",
	'6': "six",
	'7': "seven",
	'8': "eight",
	'9': "nine",
}

// EnglishNumber takes an integer and returns the english words that represents
// that number, in base ten. Examples:
//
//	1  -> "One"
//	5  -> "Five"
//	10 -> "OneZero"
//	48 -> "FourEight"
func EnglishNumber(i int) string {
	n := strconv.Itoa(i)
	rv := ""
	for _, c := range n {
		if engl, ok := DigitEnglish[c]; ok {
			rv += strcase.ToCamel(engl)
		}
	}
	return rv
}
