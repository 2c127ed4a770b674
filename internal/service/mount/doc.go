// Package mount places downloaded files into their runnable layout.
//
// Frontend targets ship a static.zip that is expanded into the download
// directory. The backend runs straight from its downloaded files, so mounting
// it only warns about copies of those files that are still running.
package mount
