package scripting

import "testing"

func TestDetectLaunchURL(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		want   LaunchURL
		wantOK bool
	}{
		{"launchURL", `app.launchURL("https://example.com/a?b=1");`, LaunchURL{URL: "https://example.com/a?b=1"}, true},
		{"new window", `app.launchURL('http://example.com', true)`, LaunchURL{URL: "http://example.com", NewWindow: true}, true},
		{"window.open", `window.open("https://example.com")`, LaunchURL{URL: "https://example.com"}, true},
		{"gotoURL", "\n  xfa.host.gotoURL(\"mailto:a@example.com\");", LaunchURL{URL: "mailto:a@example.com"}, true},
		{"bare www", `app.launchURL("www.example.com")`, LaunchURL{URL: "http://www.example.com"}, true},
		{"javascript scheme", `app.launchURL("javascript:alert(1)")`, LaunchURL{}, false},
		{"computed url", `app.launchURL(base + "/x")`, LaunchURL{}, false},
		{"other call", `app.alert("https://example.com")`, LaunchURL{}, false},
		{"not a call", `var x = 1;`, LaunchURL{}, false},
		{"followed by code", `app.launchURL("https://example.com"); app.alert("x");`, LaunchURL{}, false},
		{"syntax error", `app.launchURL(`, LaunchURL{}, false},
		{"empty", "  ", LaunchURL{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DetectLaunchURL(tc.src)
			if ok != tc.wantOK || got != tc.want {
				t.Errorf("DetectLaunchURL(%q) = %+v, %v; want %+v, %v", tc.src, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}
