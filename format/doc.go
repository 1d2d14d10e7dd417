// Package format names the supported property-tree text formats and
// maps between format names, file extensions, and Format values.
//
// # Usage
//
//	// Pick a format from a flag value
//	f, err := format.ParseFormat("json")
//
//	// Or from a file name
//	f, err := format.Sniff("config.info")
//
// # Related Packages
//
//   - github.com/eponymous/proptree/json - JSON codec
//   - github.com/eponymous/proptree/xml - XML codec
//   - github.com/eponymous/proptree/ini - INI codec
//   - github.com/eponymous/proptree/info - INFO codec
package format
