package launcher

import "sort"

// Profile describes one wrapped tool. Launchers differ only by profile.
type Profile struct {
	Name        string // config key, e.g. "wix"
	Command     string // launcher binary name used in the usage line
	Label       string // tool name used in diagnostics, e.g. "wix.exe"
	Example     string // example arguments for the usage text
	InstallHint string // printed when the tool cannot be found
	Quote       bool   // escape arguments before joining them; false forwards pre-quoted arguments
}

// Built-in profiles.
var (
	Mage = Profile{
		Name:        "mage",
		Command:     "mage-wrapper",
		Label:       "mage.exe",
		Example:     `C:\...\mage.exe -New Application -ToFile MyApp.exe.manifest`,
		InstallHint: "mage.exe ships with the Windows SDK (NETFX tools)",
		Quote:       true,
	}
	Signtool = Profile{
		Name:        "signtool",
		Command:     "signtool-wrapper",
		Label:       "signtool.exe",
		Example:     `C:\...\signtool.exe sign /f cert.pfx /p password file.manifest`,
		InstallHint: "signtool.exe ships with the Windows SDK (Signing Tools for Desktop Apps)",
		Quote:       true,
	}
	Wix = Profile{
		Name:        "wix",
		Command:     "wix-wrapper",
		Label:       "wix.exe",
		Example:     `C:\...\wix.exe build -out Product.msi Product.wxs`,
		InstallHint: "install the WiX Toolset with: dotnet tool install --global wix",
		Quote:       true,
	}
)

var profiles = map[string]Profile{
	Mage.Name:     Mage,
	Signtool.Name: Signtool,
	Wix.Name:      Wix,
}

// Lookup returns the built-in profile with the given name.
func Lookup(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// Names lists the built-in profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Generic returns a profile for an arbitrary executable.
func Generic(label string) Profile {
	return Profile{
		Name:    "generic",
		Command: "toolwrap run",
		Label:   label,
		Example: `C:\...\tool.exe --flag "value with spaces"`,
		Quote:   true,
	}
}
