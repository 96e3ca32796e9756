//go:build !unix

package termcap

import "github.com/kk-code-lab/mdview/internal/imgplace"

func CellSize(int) (imgplace.Size, bool) {
	return imgplace.DefaultCellSize, false
}
