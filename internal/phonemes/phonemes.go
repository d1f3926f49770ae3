// Package phonemes holds the phoneme-id table and the katakana mora
// table the analyzer, kana notation, and accent-vector builder all
// share. The full-context-label→mora mapping and the exact 45-entry
// phoneme table are, per the design notes, obtained from the external
// analyzer in a production deployment; this table is the project's own
// explicit stand-in so the pipeline is runnable standalone.
package phonemes

import "strings"

// Table is the fixed, ordered phoneme-id table. Index is the phoneme
// id predict_duration/predict_intonation/decode operate on.
var Table = []string{
	"pau", "cl", "N",
	"a", "i", "u", "e", "o",
	"A", "I", "U", "E", "O",
	"k", "g", "s", "z", "sh", "j",
	"t", "d", "ts", "ch",
	"n", "h", "b", "p", "f", "m", "y", "r", "w",
	"ky", "gy", "sy", "ty", "dy", "ny", "hy", "by", "py", "my", "ry",
	"v", "zy",
}

// Size is the fixed phoneme vocabulary size, spec'd as 45.
const Size = 45

var idOf map[string]int

func init() {
	if len(Table) != Size {
		panic("phonemes: Table does not have Size entries")
	}

	idOf = make(map[string]int, len(Table))
	for i, p := range Table {
		idOf[p] = i
	}
}

// ID returns the phoneme id for symbol, and false if symbol is unknown.
func ID(symbol string) (int, bool) {
	id, ok := idOf[symbol]
	return id, ok
}

// PauID, ClID and NID are the ids of the three phonemes with no
// consonant/vowel split (pause, geminate-consonant marker, moraic
// nasal) — referenced throughout the accent-vector builder.
var (
	PauID = tableIndex("pau")
	ClID  = tableIndex("cl")
	NID   = tableIndex("N")
)

// tableIndex looks symbol up in Table directly, since package-level
// variables are initialized before init builds idOf.
func tableIndex(symbol string) int {
	for i, p := range Table {
		if p == symbol {
			return i
		}
	}

	return -1
}

// Mora describes one katakana mora's phonological decomposition: an
// optional consonant phoneme and a vowel-slot phoneme (which, for ン
// and っ, is itself the whole mora's phoneme).
type Mora struct {
	Consonant string // "" if the mora has no onset consonant
	Vowel     string
}

// moraTableSource lists "kana consonant vowel" triples (consonant "-"
// for none) for the katakana mora table. Built as data, not code, to
// keep the gojuon/dakuten/youon grid legible.
const moraTableSource = `
ア - a
イ - i
ウ - u
エ - e
オ - o
カ k a
キ k i
ク k u
ケ k e
コ k o
ガ g a
ギ g i
グ g u
ゲ g e
ゴ g o
サ s a
シ sh i
ス s u
セ s e
ソ s o
ザ z a
ジ j i
ズ z u
ゼ z e
ゾ z o
タ t a
チ ch i
ツ ts u
テ t e
ト t o
ダ d a
ヂ j i
ヅ z u
デ d e
ド d o
ナ n a
ニ n i
ヌ n u
ネ n e
ノ n o
ハ h a
ヒ h i
フ f u
ヘ h e
ホ h o
バ b a
ビ b i
ブ b u
ベ b e
ボ b o
パ p a
ピ p i
プ p u
ペ p e
ポ p o
マ m a
ミ m i
ム m u
メ m e
モ m o
ヤ y a
ユ y u
ヨ y o
ラ r a
リ r i
ル r u
レ r e
ロ r o
ワ w a
ヲ w o
ヴ v u
キャ ky a
キュ ky u
キョ ky o
ギャ gy a
ギュ gy u
ギョ gy o
シャ sy a
シュ sy u
ショ sy o
ジャ zy a
ジュ zy u
ジョ zy o
チャ ty a
チュ ty u
チョ ty o
ニャ ny a
ニュ ny u
ニョ ny o
ヒャ hy a
ヒュ hy u
ヒョ hy o
ビャ by a
ビュ by u
ビョ by o
ピャ py a
ピュ py u
ピョ py o
ミャ my a
ミュ my u
ミョ my o
リャ ry a
リュ ry u
リョ ry o
`

// MoraTable maps katakana text to its phonological decomposition. ン
// and ッ are not in moraTableSource; init adds them separately: they
// occupy the vowel slot with no consonant.
var MoraTable map[string]Mora

// MaxMoraKanaLen is the length, in runes, of the longest key in
// MoraTable — used by the kana parser's greedy longest-match scan.
var MaxMoraKanaLen int

func init() {
	MoraTable = make(map[string]Mora)

	for _, line := range strings.Split(strings.TrimSpace(moraTableSource), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			continue
		}

		kana, consonant, vowel := fields[0], fields[1], fields[2]
		if consonant == "-" {
			consonant = ""
		}

		MoraTable[kana] = Mora{Consonant: consonant, Vowel: vowel}

		if n := len([]rune(kana)); n > MaxMoraKanaLen {
			MaxMoraKanaLen = n
		}
	}

	MoraTable["ン"] = Mora{Vowel: "N"}
	MoraTable["ッ"] = Mora{Vowel: "cl"}

	if n := len([]rune("ン")); n > MaxMoraKanaLen {
		MaxMoraKanaLen = n
	}
}
