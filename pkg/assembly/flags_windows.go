//go:build windows

package assembly

import "golang.org/x/sys/windows"

// translateFlags maps the abstract LoadFlag set onto LoadLibraryEx flags.
// purego's Windows Dlopen passes its mode argument straight through to
// LoadLibraryEx, so SecureSearch (the one flag with no direct dlopen(3)
// analogue) becomes real search-order hardening here: it restricts DLL
// resolution to the system directory, the application's directory, the
// directories added with AddDllDirectory, and the library's own folder
// instead of trusting the process's current directory.
func translateFlags(flags LoadFlag) int {
	var mode uint32
	if flags.Has(SecureSearch) {
		mode |= windows.LOAD_LIBRARY_SEARCH_SYSTEM32 | windows.LOAD_LIBRARY_SEARCH_APPLICATION_DIR |
			windows.LOAD_LIBRARY_SEARCH_USER_DIRS | windows.LOAD_LIBRARY_SEARCH_DLL_LOAD_DIR
	}
	if flags.Has(DataOnly) {
		mode |= windows.LOAD_LIBRARY_AS_DATAFILE
	}
	return int(mode)
}
