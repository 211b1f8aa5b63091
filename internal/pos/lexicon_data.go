package pos

// Built-in sound-effect vocabulary. Words appearing under several classes
// are listed once under the class they most often take in filenames.
var (
	englishNouns = []string{
		"air", "alarm", "ambience", "animal", "applause", "arrow", "axe", "ball", "balloon",
		"bang", "bass", "bat", "beep", "bell", "bike", "bird", "blade", "boat", "body",
		"bomb", "bone", "book", "bottle", "bow", "box", "brake", "branch", "brass", "bubble",
		"bullet", "button", "cabinet", "camera", "can", "car", "card", "cassette", "cat", "chain",
		"chair", "chime", "cloth", "clock", "coin", "computer", "cow", "creature", "crowd", "cup",
		"debris", "dice", "dog", "door", "drawer", "drone", "drop", "drum", "earth", "engine",
		"explosion", "fabric", "fan", "fire", "firework", "fist", "flag", "foley", "food", "footstep",
		"forest", "game", "gate", "gear", "glass", "glitch", "gong", "grass", "gravel", "gun",
		"hammer", "hand", "helicopter", "hit", "horn", "horse", "ice", "impact", "insect", "interface",
		"jet", "key", "keyboard", "kitchen", "knife", "ladder", "laser", "latch", "leather", "lid",
		"lock", "machine", "magic", "metal", "motor", "mouse", "mud", "music", "noise", "ocean",
		"office", "paper", "phone", "piano", "pipe", "plane", "plastic", "pot", "rain", "river",
		"robot", "rock", "rope", "room", "rubber", "sand", "saw", "scifi", "sea", "ship",
		"shoe", "siren", "snow", "spaceship", "stick", "stone", "storm", "street", "switch", "sword",
		"table", "tape", "thunder", "tone", "tool", "toy", "traffic", "train", "tree", "truck",
		"typewriter", "ui", "vehicle", "voice", "wall", "water", "wave", "weapon", "whistle", "wind",
		"window", "wood", "zipper",
	}

	englishVerbs = []string{
		"bounce", "break", "bubble", "burn", "buzz", "chop", "clap", "click", "close", "collapse",
		"crack", "crash", "creak", "crumble", "crush", "cut", "dig", "drag", "draw", "explode",
		"fall", "flap", "flip", "fly", "grab", "grind", "hiss", "hum", "jump", "kick",
		"knock", "open", "pass", "pop", "pour", "punch", "push", "rattle", "ring", "rip",
		"roll", "rub", "run", "rustle", "scrape", "scratch", "shake", "shatter", "shoot", "shut",
		"slam", "slide", "smash", "snap", "spin", "splash", "squeak", "stab", "step", "stomp",
		"swing", "swish", "swoosh", "tap", "tear", "throw", "tick", "type", "walk", "whoosh",
		"whir", "wobble", "zap",
	}

	englishAdjectives = []string{
		"big", "bright", "broken", "close", "cold", "dark", "deep", "distant", "dry", "electric",
		"empty", "fast", "gentle", "hard", "heavy", "high", "hollow", "hot", "large", "light",
		"long", "loud", "low", "mechanical", "medium", "metallic", "old", "quiet", "rough", "sharp",
		"short", "slow", "small", "smooth", "soft", "strong", "subtle", "thick", "thin", "tiny",
		"wet", "wooden",
	}

	englishAdverbs = []string{
		"again", "away", "back", "down", "fast", "hard", "off", "on", "out", "quickly",
		"slowly", "softly", "up",
	}

	englishStopwords = []string{
		"a", "an", "and", "at", "by", "for", "from", "in", "into", "of",
		"or", "the", "to", "with",
	}

	chineseNouns = []string{
		"门", "木门", "铁门", "车门", "键盘", "鼠标", "电脑", "手机", "金属", "玻璃",
		"木头", "石头", "水", "雨", "风", "雷", "火", "爆炸", "枪", "刀",
		"剑", "脚步", "脚步声", "汽车", "飞机", "火车", "机器人", "机器", "引擎", "发动机",
		"动物", "狗", "猫", "鸟", "人群", "掌声", "音乐", "钟", "铃", "警报",
		"界面", "按钮", "开关", "磁带", "纸", "布", "塑料", "冰", "雪", "海浪",
		"河", "森林", "房间", "环境", "声音", "撞击", "冲击", "故障", "魔法", "科幻",
	}

	chineseVerbs = []string{
		"打字", "敲", "敲击", "关", "关门", "开", "开门", "摔", "砸", "撞",
		"打", "击", "拉", "推", "滑", "滚", "跑", "走", "跳", "飞",
		"破", "碎", "切", "扔", "转", "摇", "刮", "擦", "点击", "嗖",
	}

	chineseAdjectives = []string{
		"大", "小", "重", "轻", "快", "慢", "响", "安静", "尖锐", "低沉",
		"沉重", "清脆", "金属的", "木质", "湿", "干", "远", "近", "旧", "新",
	}

	chineseAdverbs = []string{
		"很", "非常", "慢慢", "快速", "突然", "轻轻",
	}

	chineseStopwords = []string{
		"的", "了", "和", "与", "在", "是", "之",
	}
)
