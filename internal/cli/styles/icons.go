package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconCheck   = "\uf00c" // check
	IconX       = "\uf00d" // x
	IconWarning = "\uf071" // warning
	IconInfo    = "\uf05a" // info
	IconArrow   = "\uf061" // arrow right
	IconCursor  = "\uf054" // chevron-right

	IconCache    = "\uf49e" // cache
	IconTrash    = "\uf1f8" // trash
	IconClock    = "\uf017" // clock
	IconConfig   = "\ue615" // config
	IconMemory   = "\uf2db" // microchip
	IconRecycle  = "\uf1b8" // recycle
	IconPackage  = "\uf187" // archive/package
	IconGauge    = "\uf0e4" // dashboard
	IconSchema   = "\uf121" // code
	IconSettings = "\uf013" // cog
)
