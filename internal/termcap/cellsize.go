package termcap

import "github.com/kk-code-lab/mdview/internal/imgplace"

func cellFromWinsize(cols, rows, xpix, ypix int) (imgplace.Size, bool) {
	if cols <= 0 || rows <= 0 || xpix <= 0 || ypix <= 0 {
		return imgplace.DefaultCellSize, false
	}
	size := imgplace.Size{W: xpix / cols, H: ypix / rows}
	if !size.Valid() {
		return imgplace.DefaultCellSize, false
	}
	return size, true
}
