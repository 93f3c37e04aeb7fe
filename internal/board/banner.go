package board

// banner is the "WORDLEBOARD PROTOTYPE" title screen with green and yellow stripes.
var banner = Grid{
	{66, 0, 0, 0, 0, 65, 65, 65, 65, 65, 0, 0, 0, 0, 65, 65, 65, 65, 65, 0, 0, 0},
	{65, 65, 0, 0, 0, 0, 66, 66, 66, 66, 66, 0, 0, 0, 0, 66, 66, 66, 66, 66, 0, 0},
	{66, 66, 66, 0, 23, 15, 18, 4, 12, 5, 2, 15, 1, 18, 4, 0, 65, 65, 65, 65, 65, 0},
	{65, 65, 65, 65, 0, 16, 18, 15, 20, 15, 20, 25, 16, 5, 0, 0, 0, 66, 66, 66, 66, 66},
	{66, 66, 66, 66, 66, 0, 0, 0, 0, 65, 65, 65, 65, 65, 0, 0, 0, 0, 65, 65, 65, 65},
	{0, 65, 65, 65, 65, 65, 0, 0, 0, 0, 66, 66, 66, 66, 66, 0, 0, 0, 0, 66, 66, 66},
}

// Banner returns the title screen shown once when a session starts.
func Banner() Grid { return banner }
