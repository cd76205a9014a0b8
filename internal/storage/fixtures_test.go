package storage

// Output recorded from virsh 10.x.

const poolListAll = ` Name      State      Autostart
-----------------------------------
 default   active     yes
 images    active     no
 scratch   inactive   no

`

const poolListEmpty = ` Name   State   Autostart
---------------------------

`

const poolListOnlyScratchInactive = ` Name      State      Autostart
-----------------------------------
 scratch   inactive   no
`

const poolListOnlyScratchActive = ` Name      State      Autostart
-----------------------------------
 scratch   active     no
`

const poolInfoDefault = `Name:           default
UUID:           4b3a8d0e-3f0a-4d62-9c6d-8b1f1e0f7d21
State:          running
Persistent:     yes
Autostart:      yes
Capacity:       19.56 GiB
Allocation:     8.33 GiB
Available:      11.23 GiB

`

const poolInfoTransient = `Name:           transient
UUID:           0c9f0b6e-9a71-4f8e-8d64-1f0d1c3a2b55
State:          running
Persistent:     no
Autostart:      no
`

const volListDefault = ` Name          Path
------------------------------------------------------------
 base.qcow2    /var/lib/libvirt/images/base.qcow2
 disk1.img     /var/lib/libvirt/images/disk1.img

`

const volListWithClone = ` Name          Path
------------------------------------------------------------
 base.qcow2    /var/lib/libvirt/images/base.qcow2
 clone.qcow2   /var/lib/libvirt/images/clone.qcow2
 disk1.img     /var/lib/libvirt/images/disk1.img
`

const volListBaseOnly = ` Name          Path
------------------------------------------------------------
 base.qcow2    /var/lib/libvirt/images/base.qcow2
`

const volListEmpty = ` Name   Path
------------------------------------------

`

const volInfoBase = `Name:           base.qcow2
Type:           file
Capacity:       10.00 GiB
Allocation:     196.00 KiB

`

const poolDumpXMLDefault = `<pool type='dir'>
  <name>default</name>
  <uuid>4b3a8d0e-3f0a-4d62-9c6d-8b1f1e0f7d21</uuid>
  <capacity unit='bytes'>21003583488</capacity>
  <allocation unit='bytes'>8944435200</allocation>
  <available unit='bytes'>12059148288</available>
  <source>
  </source>
  <target>
    <path>/var/lib/libvirt/images</path>
    <permissions>
      <mode>0711</mode>
      <owner>0</owner>
      <group>0</group>
    </permissions>
  </target>
</pool>
`

const volDumpXMLBase = `<volume type='file'>
  <name>base.qcow2</name>
  <key>/var/lib/libvirt/images/base.qcow2</key>
  <capacity unit='bytes'>10737418240</capacity>
  <allocation unit='bytes'>200704</allocation>
  <target>
    <path>/var/lib/libvirt/images/base.qcow2</path>
    <format type='qcow2'/>
  </target>
</volume>
`
