// Package units holds the unit system used throughout the engine.
// Energies and masses are in MeV, momenta in MeV/c, lengths in cm,
// cross-sections in barn and temperatures in kelvin.
package units

const (
	MeV = 1.0
	KeV = 1e-3 * MeV
	EV  = 1e-6 * MeV
	GeV = 1e3 * MeV
)

const (
	Barn    = 1.0
	Percent = 0.01
)

const (
	// AMU is the unified atomic mass unit.
	AMU = 931.49410242 * MeV

	NeutronMass  = 939.56542052 * MeV
	ProtonMass   = 938.27208816 * MeV
	ElectronMass = 0.51099895 * MeV

	// NeutronMassExcess is the neutron mass excess in MeV.
	NeutronMassExcess = 8.0713181 * MeV

	// Boltzmann is k_B in MeV/K.
	Boltzmann = 8.617333262e-11 * MeV

	// Avogadro is in mol^-1.
	Avogadro = 6.02214076e23
)

const (
	// ThermalEnergy is the conventional 2200 m/s neutron energy.
	ThermalEnergy = 0.0253 * EV

	// RoomTemperature is the temperature most evaluated data is tabulated at.
	RoomTemperature = 293.6
)
