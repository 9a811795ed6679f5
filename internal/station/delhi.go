package station

// delhiStations is the canonical table for the Delhi training set. Codes are
// the integer station_code values the model was fitted on; several physical
// stations were reported under more than one code.
var delhiStations = []Entry{
	{CanonicalName: "Alipur", Codes: []int{36, 39}, Aliases: []string{"5024_Alipur", "Alipur_Delhi_DPCC"}},
	{CanonicalName: "Anand Vihar", Codes: []int{35, 40}, Aliases: []string{"301_Anand_Vihar", "Anand_Vihar_Delhi_DPCC"}},
	{CanonicalName: "Ashok Vihar", Codes: []int{16, 41}, Aliases: []string{"1420_Ashok_Vihar", "Ashok_Vihar_Delhi_DPCC"}},
	{CanonicalName: "Aya Nagar", Codes: []int{5, 42}, Aliases: []string{"108_Aya_Nagar", "Aya_Nagar_Delhi_IMD"}},
	{CanonicalName: "Bawana", Codes: []int{31, 43}, Aliases: []string{"1560_Bawana", "Bawana_Delhi_DPCC"}},
	{CanonicalName: "Burari Crossing", Codes: []int{1, 44}, Aliases: []string{"104_Burari_Crossing", "Burari_Crossing_Delhi_IMD"}},
	{CanonicalName: "CRRI Mathura Road", Codes: []int{0, 45}, Aliases: []string{"103_CRRI_Mathura_Road", "CRRI_Mathura_Road_Delhi_IMD"}},
	{CanonicalName: "Chandni Chowk", Codes: []int{37, 46}, Aliases: []string{"5393_Chandni_Chowk", "Chandni_Chowk_Delhi_IITM"}},
	{CanonicalName: "DTU", Codes: []int{11, 47}, Aliases: []string{"118_DTU", "DTU_Delhi_CPCB"}},
	{CanonicalName: "Dr. Karni Singh Shooting Range", Codes: []int{17, 48}, Aliases: []string{"1421_Dr._Karni_Singh_Shooting_Range", "DrKSS_Delhi_DPCC"}},
	{CanonicalName: "Dwarka Sector 8", Codes: []int{18, 49}, Aliases: []string{"1422_Dwarka-Sector_8_Delhi_DPCC_", "Dwarka_Sector_8_Delhi_DPCC_"}},
	{CanonicalName: "IGI Airport", Codes: []int{3, 50}, Aliases: []string{"106_IGI_Airport_(T3)", "IGI_Airport__T3__Delhi_IMD"}},
	{CanonicalName: "IHBAS Dilshad Garden", Codes: []int{8, 51}, Aliases: []string{"114_IHBAS_Dilshad_Garden", "IHBAS_Dilshad_Garden_Delhi_CPCB"}},
	{CanonicalName: "ITO", Codes: []int{10, 52}, Aliases: []string{"117_ITO", "ITO_Delhi_CPCB"}},
	{CanonicalName: "Jahangirpuri", Codes: []int{19, 53}, Aliases: []string{"1423_Jahangirpuri", "Jahangirpuri_Delhi_DPCC"}},
	{CanonicalName: "Jawaharlal Nehru Stadium", Codes: []int{20, 54}, Aliases: []string{"1424_Jawaharlal_Nehru_Stadium", "Jawaharlal_Nehru_Stadium_Delhi_DPCC"}},
	{CanonicalName: "Lodhi Road", Codes: []int{6, 38, 55, 56}, Aliases: []string{"109_Lodhi_Road", "5395_Lodhi_Road", "Lodhi_Road_Delhi_IITM", "Lodhi_Road_Delhi_IMD"}},
	{CanonicalName: "Major Dhyan Chand Stadium", Codes: []int{21, 57}, Aliases: []string{"1425_Major_Dhyan_Chand_National_Stadium", "Major_Dhyan_Chand_National_Stadium_Delhi_DPCC"}},
	{CanonicalName: "Mandir Marg", Codes: []int{13, 58}, Aliases: []string{"122_Mandir_Marg", "Mandir_Marg_Delhi_DPCC"}},
	{CanonicalName: "Mundka", Codes: []int{32, 59}, Aliases: []string{"1561_Mundka", "Mundka_Delhi_DPCC"}},
	{CanonicalName: "NSIT Dwarka", Codes: []int{9, 60}, Aliases: []string{"115_NSIT_Dwarka", "NSIT_Dwarka_Delhi_CPCB"}},
	{CanonicalName: "Najafgarh", Codes: []int{23, 61}, Aliases: []string{"1427_Najafgarh", "Najafgarh_Delhi_DPCC"}},
	{CanonicalName: "Narela", Codes: []int{22, 62}, Aliases: []string{"1426_Narela", "Narela_Delhi_DPCC"}},
	{CanonicalName: "Nehru Nagar", Codes: []int{25, 63}, Aliases: []string{"1429_Nehru_Nagar", "Nehru_Nagar_Delhi_DPCC"}},
	{CanonicalName: "North Campus DU", Codes: []int{2, 64}, Aliases: []string{"105_North_Campus_DU", "North_Campus_DU_Delhi_IMD"}},
	{CanonicalName: "Okhla Phase 2", Codes: []int{24, 65}, Aliases: []string{"1428_Okhla_Phase-2", "Okhla_Phase_2_Delhi_DPCC"}},
	{CanonicalName: "Patparganj", Codes: []int{27, 66}, Aliases: []string{"1431_Patparganj", "Patparganj_Delhi_DPCC"}},
	{CanonicalName: "Punjabi Bagh", Codes: []int{15, 67}, Aliases: []string{"125_Punjabi_Bagh", "Punjabi_Bagh_Delhi_DPCC"}},
	{CanonicalName: "Pusa", Codes: []int{4, 34, 68, 69}, Aliases: []string{"107_Pusa", "1563_Pusa", "Pusa_Delhi_DPCC", "Pusa_Delhi_IMD"}},
	{CanonicalName: "R K Puram", Codes: []int{14, 70}, Aliases: []string{"124_R_K_Puram", "R_K_Puram_Delhi_DPCC"}},
	{CanonicalName: "Rohini", Codes: []int{26, 71}, Aliases: []string{"1430_Rohini", "Rohini_Delhi_DPCC"}},
	{CanonicalName: "Shadipur", Codes: []int{7, 72}, Aliases: []string{"113_Shadipur", "Shadipur_Delhi_CPCB"}},
	{CanonicalName: "Sirifort", Codes: []int{12, 73}, Aliases: []string{"119_Sirifort", "Sirifort_Delhi_CPCB"}},
	{CanonicalName: "Sonia Vihar", Codes: []int{28, 74}, Aliases: []string{"1432_Sonia_Vihar", "Sonia_Vihar_Delhi_DPCC"}},
	{CanonicalName: "Sri Aurobindo Marg", Codes: []int{33, 75}, Aliases: []string{"1562_Sri_Aurobindo_Marg", "Sri_Aurobindo_Marg_Delhi_DPCC"}},
	{CanonicalName: "Vivek Vihar", Codes: []int{30, 76}, Aliases: []string{"1435_Vivek_Vihar", "Vivek_Vihar_Delhi_DPCC"}},
	{CanonicalName: "Wazirpur", Codes: []int{29, 77}, Aliases: []string{"1434_Wazirpur", "Wazirpur_Delhi_DPCC"}},
	// Single-code override for the CPCB 301 feed. Only inputs that contain the
	// full "(301)" suffix resolve here; plain "Anand Vihar" keeps both codes.
	{CanonicalName: "Anand Vihar (301)", Codes: []int{35}, Aliases: []string{"301_Anand_Vihar"}},
}

// Default returns the compiled-in Delhi registry.
func Default() *Registry {
	r, err := NewRegistry(delhiStations)
	if err != nil {
		panic("station: invalid built-in registry: " + err.Error())
	}
	return r
}
