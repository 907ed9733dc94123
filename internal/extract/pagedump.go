package extract

import (
	"os"
	"strings"
)

// ReadPageDump loads a collaborator page dump: one text file per
// document, pages separated by form feeds. A document always has at
// least one page, even when the file is empty.
func ReadPageDump(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), "\f"), nil
}
