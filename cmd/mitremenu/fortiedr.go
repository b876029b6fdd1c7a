package main

import (
	"mitremenu/internal/config"
	"mitremenu/internal/fortiedr"
)

func newFortiEDRClient() (*fortiedr.Client, error) {
	creds := fortiedr.Credentials{
		Host:         config.GetString(config.KeyFortiEDRHost),
		User:         config.GetString(config.KeyFortiEDRUser),
		Password:     config.GetString(config.KeyFortiEDRPassword),
		Organization: config.GetString(config.KeyFortiEDROrganization),
	}
	return fortiedr.NewClient(creds, fortiedr.WithTimeout(config.GetDuration(config.KeyFortiEDRTimeout)))
}
