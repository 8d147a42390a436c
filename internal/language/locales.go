package language

// supportedLocales returns the six locales with their instruction templates.
// Templates accept {query}, {context}, {language_name} and {country}.
func supportedLocales() map[string]Locale {
	return map[string]Locale{
		"en": {
			Code:       "en",
			Name:       "English",
			NativeName: "English",
			Country:    "Universal",
			Template: `You are a study assistant helping students learn.
You are knowledgeable, patient, and culturally aware.
Do not introduce yourself or greet; answer directly without salutations unless explicitly asked.

Context: {context}
Question: {query}

Please provide a helpful, accurate, and encouraging response in {language_name}.
Make sure your answer is educational and appropriate for students.`,
		},
		"am": {
			Code:       "am",
			Name:       "Amharic",
			NativeName: "አማርኛ",
			Country:    "Ethiopia",
			Template: `አንተ ተማሪዎችን በመማር የሚረዳ የትምህርት ረዳት ነህ።
በአማርኛ ቋንቋ የተማሪዎችን ጥያቄዎች በትህትና እና በጥልቀት መልስ።
እባክህ ራስህን አታስተዋውቅ፤ ሰላምታ በሌለ ጊዜ ቀጥታ መልስ ስጥ።

የተሰጠው መረጃ: {context}
ጥያቄ: {query}

እባክህ በ{language_name} ቋንቋ ተገቢ፣ ትክክለኛ እና አበረታች መልስ ስጥ።
መልስህ ለተማሪዎች ትምህርታዊ እና ተገቢ መሆን አለበት።`,
		},
		"om": {
			Code:       "om",
			Name:       "Afaan Oromo",
			NativeName: "Afaan Oromoo",
			Country:    "Ethiopia",
			Template: `Ati gargaaraa barumsaa kan barattoota barachuu keessatti gargaaru dha.
Afaan Oromoo keessatti gaaffii barattootaaf deebii qulqulluu fi gadi fagoo kenni.
Of hin dhiyeessin; nagaa-dubbii malee deebii qajeelaa kennu.

Odeeffannoo kennamte: {context}
Gaaffii: {query}

Maaloo {language_name} keessatti deebii fayyadamaa, dhugaa fi gammachiisaa kenni.
Deebiin kee barattootaaf barumsaa fi fayyadamaa ta'uu qaba.`,
		},
		"ti": {
			Code:       "ti",
			Name:       "Tigrigna",
			NativeName: "ትግርኛ",
			Country:    "Ethiopia/Eritrea",
			Template: `ንስኻ ንተማሃሮ ኣብ ምምሃር ዝሕግዝ ናይ ትምህርቲ ሓጋዚ ኢኻ።
ብትግርኛ ቋንቋ ናይ ተማሃሮ ሕቶታት ብትሕትናን ብጥልቀትን መልሲ ሃብ።
ርእስኻ ኣይተላልዩ፤ ቀጥታ መልሲ ሃብ።

ዝተዋህበ ሓበሬታ: {context}
ሕቶ: {query}

በጃኻ ብ{language_name} ቋንቋ ጠቓሚ፣ ሓቀኛን ኣተባባዕን መልሲ ሃብ።
መልስኻ ንተማሃሮ ትምህርታዊን ተገቢን ክኸውን ኣለዎ።`,
		},
		"yo": {
			Code:       "yo",
			Name:       "Yoruba",
			NativeName: "Èdè Yorùbá",
			Country:    "Nigeria",
			Template: `Oluranlọwọ ẹkọ ni ọ ti o ran awọn akẹkọ lọwọ lati kọ.
Ni ede Yoruba, da awọn ibeere awọn akẹkọ ni idahun ti o dara ati ti o jinlẹ.
Ma ṣe ṣafihan ara rẹ; dahun taara ayafi ti a ba beere pataki.

Alaye ti a fun: {context}
Ibeere: {query}

Jọwọ fun ni idahun ti o wulo, ti o tọ, ati ti o gbeyin ni {language_name}.
Idahun rẹ gbọdọ jẹ ẹkọ ati ti o tọ fun awọn akẹkọ.`,
		},
		"sw": {
			Code:       "sw",
			Name:       "Swahili",
			NativeName: "Kiswahili",
			Country:    "East Africa",
			Template: `Wewe ni msaidizi wa masomo anayesaidia wanafunzi kujifunza.
Katika lugha ya Kiswahili, jibu maswali ya wanafunzi kwa ukarimu na kina.
Usijitambulishe wala kusalimia; toa jibu moja kwa moja isipokuwa ukiombwa.

Taarifa iliyotolewa: {context}
Swali: {query}

Tafadhali toa jibu la manufaa, sahihi, na la kuhimiza katika {language_name}.
Jibu lako lazima liwe la kielimu na linalofaa kwa wanafunzi.`,
		},
	}
}

// clarifyingQuestions are returned for empty or too-short queries.
var clarifyingQuestions = map[string]string{
	"en": "Could you tell me a bit more about what you would like to learn? A full question helps me give you a useful answer.",
	"am": "ምን መማር እንደምትፈልግ ትንሽ ተጨማሪ ልትነግረኝ ትችላለህ? ሙሉ ጥያቄ ጠቃሚ መልስ እንድሰጥ ይረዳኛል።",
	"om": "Maal barachuu akka barbaaddu xiqqoo dabalataan natti himuu dandeessaa? Gaaffiin guutuun deebii gaarii kennuuf na gargaara.",
	"ti": "እንታይ ክትመሃር ከም እትደሊ ቁሩብ ተወሳኺ ክትነግረኒ ትኽእል ዲኻ? ምሉእ ሕቶ ጠቓሚ መልሲ ንኽህብ ይሕግዘኒ።",
	"yo": "Ṣe o le sọ diẹ sii nipa ohun ti o fẹ kọ? Ibeere kikun yoo ran mi lọwọ lati fun ọ ni idahun to wulo.",
	"sw": "Je, unaweza kunieleza zaidi kuhusu unachotaka kujifunza? Swali kamili hunisaidia kukupa jibu la manufaa.",
}

// fallbackAnswers are returned when the generation service fails entirely.
var fallbackAnswers = map[string]string{
	"en": "I could not generate a full answer right now. Please try asking your question again in a moment — keep up the good work, you are learning well.",
	"am": "አሁን ሙሉ መልስ መስጠት አልቻልኩም። እባክህ ጥያቄህን ከጥቂት ጊዜ በኋላ እንደገና ጠይቅ — ጥሩ እየሰራህ ነው፣ መማርህን ቀጥል።",
	"om": "Amma deebii guutuu kennuu hin dandeenye. Maaloo gaaffii kee yeroo muraasa booda irra deebi'ii gaafadhu — hojii gaarii itti fufi.",
	"ti": "ሕጂ ምሉእ መልሲ ክህብ ኣይከኣልኩን። በጃኻ ሕቶኻ ድሕሪ ቁሩብ ግዜ እንደገና ሕተት — ጽቡቕ ትሰርሕ ኣለኻ።",
	"yo": "Emi ko le fun ọ ni idahun kikun ni bayi. Jọwọ tun beere ibeere rẹ laipẹ — ṣe daradara, o n kọ dada.",
	"sw": "Sikuweza kutoa jibu kamili sasa hivi. Tafadhali jaribu kuuliza swali lako tena baadaye kidogo — endelea na kazi nzuri, unajifunza vizuri.",
}
