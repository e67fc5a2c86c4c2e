package plot

import (
	"fmt"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontsOnce   sync.Once
	fontRegular *truetype.Font
	fontBold    *truetype.Font
	fontsErr    error
)

// fonts returns the parsed regular and bold Go fonts. They are parsed once per process.
func fonts() (regular, bold *truetype.Font, err error) {
	fontsOnce.Do(func() {
		if fontRegular, fontsErr = freetype.ParseFont(goregular.TTF); fontsErr != nil {
			fontsErr = fmt.Errorf("parsing regular font: %w", fontsErr)
			return
		}
		if fontBold, fontsErr = freetype.ParseFont(gobold.TTF); fontsErr != nil {
			fontsErr = fmt.Errorf("parsing bold font: %w", fontsErr)
		}
	})
	return fontRegular, fontBold, fontsErr
}
