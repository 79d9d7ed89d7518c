// Package scripting inspects XFA event scripts without running them.
package scripting

import (
	"net/url"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// LaunchURL is a script whose only effect is opening a URL.
type LaunchURL struct {
	URL       string
	NewWindow bool
}

// Calls recognised as opening a URL.
var launchers = map[string]bool{
	"app.launchURL":    true,
	"window.open":      true,
	"xfa.host.gotoURL": true,
}

var schemes = map[string]bool{"http": true, "https": true, "ftp": true, "mailto": true, "tel": true}

// DetectLaunchURL reports whether src is a single call such as
// app.launchURL("https://example.com", true) with a literal absolute URL.
// The script is parsed, never evaluated; anything else is rejected.
func DetectLaunchURL(src string) (LaunchURL, bool) {
	if strings.TrimSpace(src) == "" {
		return LaunchURL{}, false
	}
	prog, err := parser.ParseFile(nil, "", src, 0)
	if err != nil || len(prog.Body) != 1 {
		return LaunchURL{}, false
	}
	stmt, ok := prog.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return LaunchURL{}, false
	}
	call, ok := stmt.Expression.(*ast.CallExpression)
	if !ok || len(call.ArgumentList) == 0 {
		return LaunchURL{}, false
	}
	callee := dotted(call.Callee)
	if !launchers[callee] {
		return LaunchURL{}, false
	}
	lit, ok := call.ArgumentList[0].(*ast.StringLiteral)
	if !ok {
		return LaunchURL{}, false
	}
	u, ok := fixURL(string(lit.Value))
	if !ok {
		return LaunchURL{}, false
	}

	res := LaunchURL{URL: u}
	if callee == "app.launchURL" && len(call.ArgumentList) > 1 {
		if b, ok := call.ArgumentList[1].(*ast.BooleanLiteral); ok {
			res.NewWindow = b.Value
		}
	}
	return res, true
}

// dotted renders an identifier chain like a.b.c, or "" for any other
// expression.
func dotted(e ast.Expression) string {
	switch x := e.(type) {
	case *ast.Identifier:
		return string(x.Name)
	case *ast.DotExpression:
		left := dotted(x.Left)
		if left == "" {
			return ""
		}
		return left + "." + string(x.Identifier.Name)
	}
	return ""
}

func fixURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "www.") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil || !schemes[strings.ToLower(u.Scheme)] {
		return "", false
	}
	return u.String(), true
}
