package wordbank

var defaultThemes = []Theme{
	{Group: "food", WordA: "pizza", WordB: "burger"},
	{Group: "food", WordA: "sushi", WordB: "sashimi"},
	{Group: "food", WordA: "coffee", WordB: "tea"},
	{Group: "food", WordA: "pancake", WordB: "waffle"},
	{Group: "food", WordA: "ramen", WordB: "udon"},
	{Group: "animal", WordA: "tiger", WordB: "lion"},
	{Group: "animal", WordA: "dolphin", WordB: "whale"},
	{Group: "animal", WordA: "crow", WordB: "raven"},
	{Group: "animal", WordA: "rabbit", WordB: "hare"},
	{Group: "animal", WordA: "alligator", WordB: "crocodile"},
	{Group: "place", WordA: "beach", WordB: "pool"},
	{Group: "place", WordA: "library", WordB: "bookstore"},
	{Group: "place", WordA: "airport", WordB: "train station"},
	{Group: "place", WordA: "hospital", WordB: "clinic"},
	{Group: "place", WordA: "museum", WordB: "gallery"},
	{Group: "job", WordA: "doctor", WordB: "nurse"},
	{Group: "job", WordA: "teacher", WordB: "professor"},
	{Group: "job", WordA: "chef", WordB: "baker"},
	{Group: "job", WordA: "police officer", WordB: "firefighter"},
	{Group: "job", WordA: "singer", WordB: "rapper"},
	{Group: "object", WordA: "pencil", WordB: "pen"},
	{Group: "object", WordA: "umbrella", WordB: "raincoat"},
	{Group: "object", WordA: "mirror", WordB: "window"},
	{Group: "object", WordA: "piano", WordB: "keyboard"},
	{Group: "object", WordA: "candle", WordB: "lamp"},
}
