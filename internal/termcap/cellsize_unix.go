//go:build unix

package termcap

import (
	"github.com/kk-code-lab/mdview/internal/imgplace"
	"golang.org/x/sys/unix"
)

// CellSize reads the pixel size of one cell from the terminal on fd. ok is
// false when the terminal does not report pixel dimensions.
func CellSize(fd int) (imgplace.Size, bool) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return imgplace.DefaultCellSize, false
	}
	return cellFromWinsize(int(ws.Col), int(ws.Row), int(ws.Xpixel), int(ws.Ypixel))
}
